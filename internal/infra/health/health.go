// Package health – проверки зависимостей сервиса для /health/detailed и gRPC health.
package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Check func(ctx context.Context) error

// Checker опрашивает именованные зависимости параллельно.
type Checker struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	return &Checker{checks: make(map[string]Check), timeout: timeout}
}

func (c *Checker) Add(name string, check Check) *Checker {
	c.checks[name] = check
	return c
}

// Run возвращает ошибку по каждой зависимости (nil – здорова) и общий итог.
func (c *Checker) Run(ctx context.Context) (map[string]error, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make(map[string]error, len(c.checks))
	errs := make([]error, len(c.checks))
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}

	var g errgroup.Group
	for i, name := range names {
		check := c.checks[name]
		g.Go(func() error {
			errs[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	for i, name := range names {
		results[name] = errs[i]
		if errs[i] != nil {
			ok = false
		}
	}
	return results, ok
}

func Database(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func Redis(rdb redis.UniversalClient) Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
