package service

import (
	"context"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	repo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/repo"
)

// CheckUnique проверяет username и email до вставки; гонку добивает
// уникальный индекс в БД. Пустое значение пропускается.
func CheckUnique(ctx context.Context, ur repo.UserRepo, username, email string) error {
	if username != "" {
		_, err := ur.GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			return customErrors.ErrDuplicateUsername
		case !customErrors.IsNotFound(err):
			return customErrors.WrapInternal(err, "GetUserByUsername")
		}
	}
	if email != "" {
		_, err := ur.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			return customErrors.ErrDuplicateEmail
		case !customErrors.IsNotFound(err):
			return customErrors.WrapInternal(err, "GetUserByEmail")
		}
	}
	return nil
}
