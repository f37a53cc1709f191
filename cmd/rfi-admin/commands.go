package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	pgRepo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/password"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/users"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/db"
	lg "github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/migrate"
	"golang.org/x/term"
)

const passwordEnv = "RFI_ADMIN_PASSWORD"

// подменяются в тестах
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	lookupEnv    = os.LookupEnv
)

const usage = `usage:
  rfi-admin create-user -username NAME -email EMAIL [-full-name NAME] [-superuser]
  rfi-admin gen-secret [-bytes N]`

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return errors.New("no command")
	}

	switch args[0] {
	case "create-user":
		return createUserCmd(ctx, args[1:], stdout, stderr)
	case "gen-secret":
		return genSecretCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func genSecretCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gen-secret", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("bytes", 32, "secret length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 32 {
		return fmt.Errorf("-bytes must be at least 32, got %d", *n)
	}

	buf := make([]byte, *n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("read random: %w", err)
	}
	_, err := fmt.Fprintln(stdout, hex.EncodeToString(buf))
	return err
}

type createUserFlags struct {
	username  string
	email     string
	fullName  string
	superuser bool
}

func parseCreateUser(args []string, stderr io.Writer) (createUserFlags, error) {
	var f createUserFlags
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.username, "username", "", "login name")
	fs.StringVar(&f.email, "email", "", "e-mail address")
	fs.StringVar(&f.fullName, "full-name", "", "display name")
	fs.BoolVar(&f.superuser, "superuser", false, "grant superuser rights")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.username == "" || f.email == "" {
		return f, errors.New("-username and -email are required")
	}
	return f, nil
}

func createUserCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseCreateUser(args, stderr)
	if err != nil {
		return err
	}
	pwd, err := obtainPassword(stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := lg.Must(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	gdb, err := db.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	svc := users.New(pgRepo.NewPostgresUserRepo(gdb), hasher, dto.NewValidator(), log.Named("admin"))
	return createUser(ctx, svc, f, pwd, stdout)
}

func createUser(ctx context.Context, svc *users.Service, f createUserFlags, pwd string, stdout io.Writer) error {
	u, err := svc.Create(ctx, dto.UserCreateDTO{
		Username:    f.username,
		Email:       f.email,
		Password:    pwd,
		FullName:    f.fullName,
		IsSuperuser: f.superuser,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "created user id=%d username=%s superuser=%t\n", u.ID, u.Username, u.IsSuperuser)
	return err
}

// obtainPassword берёт пароль из окружения, иначе спрашивает без эха.
// Пароль не обрезается: пробелы по краям – его часть в обоих случаях.
func obtainPassword(w io.Writer) (string, error) {
	if pwd, ok := lookupEnv(passwordEnv); ok && pwd != "" {
		return pwd, nil
	}
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passwordEnv)
	}

	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

