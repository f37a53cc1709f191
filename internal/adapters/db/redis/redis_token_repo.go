package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix = "rfi:revoked:r:"
	accessPrefix  = "rfi:revoked:a:"

	// minTTL – запись пишется всегда, даже если exp уже позади:
	// токен может ещё приниматься в пределах leeway.
	minTTL = time.Second
)

// RedisTokenRepo хранит отозванные jti до истечения самих токенов.
type RedisTokenRepo struct {
	client *redis.Client
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
	}
}

// Revoke атомарно помечает refresh-токен использованным; false – он уже был отозван.
// until – момент, после которого токен гарантированно не пройдёт проверку (exp + leeway).
func (r *RedisTokenRepo) Revoke(ctx context.Context, jti string, until time.Time) (bool, error) {
	return r.client.SetNX(ctx, refreshPrefix+jti, 1, keyTTL(until)).Result()
}

func (r *RedisTokenRepo) RevokeAccess(ctx context.Context, jti string, until time.Time) error {
	return r.client.Set(ctx, accessPrefix+jti, 1, keyTTL(until)).Err()
}

func keyTTL(until time.Time) time.Duration {
	return max(time.Until(until), minTTL)
}

func (r *RedisTokenRepo) IsAccessRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := r.client.Get(ctx, accessPrefix+jti).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil // ключа нет, значит не отозван
	case err != nil:
		return true, err // считаем отозванным, плюс ошибка вверх
	default:
		return true, nil
	}
}

func (r *RedisTokenRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
