// Package policy содержит проверки прав над уже разрешённым пользователем.
// Хранилище они не трогают.
package policy

import (
	authErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
)

// RequireActive – точка композиции: резолвер уже отсеял неактивных.
func RequireActive(u model.User) (model.User, error) {
	if !u.IsActive {
		return model.User{}, authErrors.ErrInactiveUser
	}
	return u, nil
}

func RequireSuperuser(u model.User) (model.User, error) {
	if !u.IsSuperuser {
		return model.User{}, authErrors.ErrForbidden
	}
	return u, nil
}

func RequireSelfOrSuperuser(u model.User, targetID int64) error {
	if u.ID == targetID || u.IsSuperuser {
		return nil
	}
	return authErrors.ErrForbidden
}
