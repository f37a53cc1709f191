package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("SECRET_KEY", "test-secret-key-with-enough-entropy")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "2")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "3")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	// необязательные, но пусть будут
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com"]`)
	t.Setenv("ALLOW_CREDENTIALS", "true")
	t.Setenv("HTTPS_CERT_FILE", "cert.pem")
	t.Setenv("HTTPS_KEY_FILE", "key.pem")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 72*time.Hour {
		t.Fatalf("RefreshTokenTTL want 72h, got %v", cfg.RefreshTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins parsed wrong: %v", cfg.AllowedOrigins)
	}
	if !cfg.TLSEnabled() {
		t.Fatal("TLS must be enabled when both cert and key are set")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("SECRET_KEY", "s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Algorithm != "HS256" {
		t.Fatalf("Algorithm want HS256, got %s", cfg.Algorithm)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("AccessTokenTTL want 30m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL want 7d, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.TokenLeeway != 0 {
		t.Fatalf("TokenLeeway want 0, got %v", cfg.TokenLeeway)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("default origins want 2, got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// задаём всё, КРОМЕ SECRET_KEY
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing SECRET_KEY, got nil")
	}
}

func TestLoad_RejectsAsymmetricAlgorithm(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("ALGORITHM", "RS256")

	if _, err := Load(); err == nil {
		t.Fatal("RS256 must be rejected: only HMAC algorithms are supported")
	}
}

func TestLoad_BadBcryptCost(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range bcrypt cost")
	}
}

func TestParseList(t *testing.T) {
	got, err := parseList(" https://a.example , https://b.example ,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("unexpected list: %v", got)
	}
	if _, err := parseList("[broken"); err == nil {
		t.Fatal("broken JSON must fail")
	}
}
