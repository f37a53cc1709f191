package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open подключается к postgres с настройками пула из конфига и проверяет соединение.
// TranslateError не включаем: репозиториям нужно имя ограничения из *pgconn.PgError.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	lvl := logger.Warn
	if cfg.LogLevel == "debug" {
		lvl = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database connected",
		zap.Int("max_open", cfg.DBMaxOpenConns),
		zap.Int("max_idle", cfg.DBMaxIdleConns),
		zap.Duration("conn_lifetime", cfg.DBConnLifetime),
	)
	return db, nil
}
