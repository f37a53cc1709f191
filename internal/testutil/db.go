// Package testutil поднимает in-memory окружение для тестов сервисов и HTTP.
package testutil

import (
	"testing"

	authModel "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	rfiModel "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB открывает sqlite ":memory:" со схемой сервиса.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&authModel.User{}, &rfiModel.Project{}, &rfiModel.RFI{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenRedis запускает miniredis и возвращает клиента к нему.
func OpenRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
