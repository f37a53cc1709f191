package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	ProjectName string
	Version     string
	Environment string
	LogLevel    string

	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnLifetime   time.Duration
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	HTTPAddress      string
	GRPCAddress      string
	HTTPSCertFile    string
	HTTPSKeyFile     string
	AllowedOrigins   []string
	AllowCredentials bool

	SecretKey       string
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenLeeway     time.Duration
	BcryptCost      int

	RateLimitRPS   int
	RateLimitBurst int
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PROJECT_NAME", "RFI Management System")
	v.SetDefault("VERSION", "1.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 20)
	v.SetDefault("DB_CONN_LIFETIME", "1h")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("ALLOW_CREDENTIALS", true)
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	v.SetDefault("TOKEN_LEEWAY", "0s")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
}

// Load читает config.yaml (если есть) и переменные окружения; env имеет приоритет.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for _, key := range []string{"DATABASE_URL", "SECRET_KEY"} {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%s не задана", key)
		}
	}

	origins, err := parseList(v.GetString("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}

	cfg := &Config{
		ProjectName:      v.GetString("PROJECT_NAME"),
		Version:          v.GetString("VERSION"),
		Environment:      v.GetString("ENVIRONMENT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBMaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnLifetime:   v.GetDuration("DB_CONN_LIFETIME"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:    v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:     v.GetString("HTTPS_KEY_FILE"),
		AllowedOrigins:   origins,
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		SecretKey:        v.GetString("SECRET_KEY"),
		Algorithm:        strings.ToUpper(v.GetString("ALGORITHM")),
		AccessTokenTTL:   time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		RefreshTokenTTL:  time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRE_DAYS")) * 24 * time.Hour,
		TokenLeeway:      v.GetDuration("TOKEN_LEEWAY"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		RateLimitRPS:     v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !supportedAlgorithms[c.Algorithm] {
		return fmt.Errorf("ALGORITHM %q не поддерживается (HS256, HS384, HS512)", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES должно быть > 0")
	}
	if c.RefreshTokenTTL <= 0 {
		return errors.New("REFRESH_TOKEN_EXPIRE_DAYS должно быть > 0")
	}
	if c.TokenLeeway < 0 {
		return errors.New("TOKEN_LEEWAY не может быть отрицательным")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST должно быть в диапазоне %d..%d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == "") {
		return errors.New("HTTPS_CERT_FILE и HTTPS_KEY_FILE задаются только вместе")
	}
	return nil
}

func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

// parseList принимает JSON-массив или список через запятую.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
