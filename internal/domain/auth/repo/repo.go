package repo

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	// UpdateUser сохраняет профильные поля и флаги, но не хэш пароля.
	UpdateUser(ctx context.Context, user model.User) (model.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// UpdateUserWithPassword атомарно сохраняет профиль вместе с новым хэшем.
	UpdateUserWithPassword(ctx context.Context, user model.User, hash string) (model.User, error)
	ListUsers(ctx context.Context, filter model.UserFilter) ([]model.User, int64, error)
}

// TokenRepo – denylist отозванных jti; ключ живёт до exp токена.
type TokenRepo interface {
	// Revoke атомарно отзывает refresh-токен до момента until; false – он уже был отозван.
	Revoke(ctx context.Context, jti string, until time.Time) (bool, error)
	RevokeAccess(ctx context.Context, jti string, until time.Time) error
	IsAccessRevoked(ctx context.Context, jti string) (bool, error)
}
