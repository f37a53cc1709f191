package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgRepo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/postgres"
	redisRepo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/handler"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/projects"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/rfi"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/users"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/db"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	lg "github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// логгера ещё нет
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel, cfg.Environment)
	defer zapLog.Sync()
	zapLog = zapLog.With(zap.String("service", cfg.ProjectName), zap.String("version", cfg.Version))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(rootCtx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := dto.NewValidator()

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		zapLog.Fatal("failed to init password hasher", zap.Error(err))
	}
	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	userRepo := pgRepo.NewPostgresUserRepo(gdb)
	projectRepo := pgRepo.NewPostgresProjectRepo(gdb)
	rfiRepo := pgRepo.NewPostgresRFIRepo(gdb)
	tokenRepo := redisRepo.NewRedisTokenRepo(redisCli)

	authSvc := appsvc.New(userRepo, tokenRepo, jwtUtil, hasher, validate, zapLog.Named("auth"))

	checker := health.NewChecker(2*time.Second).
		Add("database", health.Database(gdb)).
		Add("redis", health.Redis(redisCli))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, "rfi"),
	)

	router := handler.NewRouter(rootCtx, handler.Deps{
		Config:   cfg,
		Log:      zapLog,
		Auth:     authSvc,
		Users:    users.New(userRepo, hasher, validate, zapLog.Named("users")),
		Projects: projects.New(projectRepo, validate, zapLog.Named("projects")),
		RFIs:     rfi.New(rfiRepo, projectRepo, validate, zapLog.Named("rfi")),
		Health:   checker,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, checker, registry, zapLog.Named("grpc"))
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening",
			zap.String("addr", cfg.HTTPAddress),
			zap.Bool("tls", cfg.TLSEnabled()),
		)
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
		os.Exit(1)
	}
}
