// Package users – администрирование учётных записей поверх UserRepo.
// Все операции получают уже разрешённого актора; права проверяются здесь,
// а не только в роутере.
package users

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	authsvc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/service"
	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/policy"
	repo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Service struct {
	repo   repo.UserRepo
	hasher authsvc.PasswordHasher
	v      *validator.Validate
	log    *zap.Logger
}

func New(r repo.UserRepo, h authsvc.PasswordHasher, v *validator.Validate, log *zap.Logger) *Service {
	return &Service{repo: r, hasher: h, v: v, log: log}
}

func (s *Service) List(ctx context.Context, actor model.User, q dto.UserListQuery) (model.UserPage, error) {
	if _, err := policy.RequireSuperuser(actor); err != nil {
		return model.UserPage{}, err
	}
	if err := s.v.Struct(q); err != nil {
		return model.UserPage{}, customErrors.NewInvalidArgument(err.Error())
	}

	items, total, err := s.repo.ListUsers(ctx, model.UserFilter{
		Search:      q.Search,
		IsActive:    q.IsActive,
		IsSuperuser: q.IsSuperuser,
		Skip:        q.Skip,
		Limit:       q.Limit,
	})
	if err != nil {
		return model.UserPage{}, customErrors.WrapInternal(err, "ListUsers")
	}
	for i := range items {
		items[i].HashedPassword = ""
	}
	return model.UserPage{Items: items, Total: total, Skip: q.Skip, Limit: q.Limit}, nil
}

func (s *Service) Get(ctx context.Context, actor model.User, id int64) (model.User, error) {
	if err := policy.RequireSelfOrSuperuser(actor, id); err != nil {
		return model.User{}, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return sanitize(u), nil
}

// Create – заведение пользователя администратором (или CLI), флаги берутся из запроса.
func (s *Service) Create(ctx context.Context, in dto.UserCreateDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}
	if err := authsvc.CheckUnique(ctx, s.repo, in.Username, in.Email); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	u, err := s.repo.CreateUser(ctx, model.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hash,
		IsActive:       active,
		IsSuperuser:    in.IsSuperuser,
	})
	if err != nil {
		if customErrors.IsDuplicate(err) {
			return model.User{}, err
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	s.log.Info("user created", zap.Int64("user_id", u.ID), zap.Bool("superuser", u.IsSuperuser))
	return sanitize(u), nil
}

func (s *Service) Update(ctx context.Context, actor model.User, id int64, in dto.UserUpdateDTO) (model.User, error) {
	if err := policy.RequireSelfOrSuperuser(actor, id); err != nil {
		return model.User{}, err
	}
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	cur, err := s.load(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if !actor.IsSuperuser {
		if in.IsSuperuser != nil && *in.IsSuperuser != cur.IsSuperuser {
			return model.User{}, customErrors.NewForbidden("Cannot change superuser status")
		}
		if in.IsActive != nil && *in.IsActive != cur.IsActive {
			return model.User{}, customErrors.NewForbidden("Cannot change active status")
		}
	}

	var newName, newEmail string
	if in.Username != nil && *in.Username != cur.Username {
		newName = *in.Username
	}
	if in.Email != nil && *in.Email != cur.Email {
		newEmail = *in.Email
	}
	if err := authsvc.CheckUnique(ctx, s.repo, newName, newEmail); err != nil {
		return model.User{}, err
	}

	next := applyUserUpdate(cur, in)
	next.UpdatedAt = time.Now()

	var updated model.User
	if in.Password != nil {
		hash, herr := s.hasher.Hash(*in.Password)
		if herr != nil {
			return model.User{}, herr
		}
		updated, err = s.repo.UpdateUserWithPassword(ctx, next, hash)
	} else {
		updated, err = s.repo.UpdateUser(ctx, next)
	}
	if err != nil {
		switch {
		case customErrors.IsNotFound(err), customErrors.IsDuplicate(err):
			return model.User{}, err
		default:
			return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
		}
	}
	return sanitize(updated), nil
}

// Deactivate – мягкое удаление: запись остаётся, is_active=false.
func (s *Service) Deactivate(ctx context.Context, actor model.User, id int64) error {
	if _, err := policy.RequireSuperuser(actor); err != nil {
		return err
	}
	cur, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if cur.ID == actor.ID {
		return customErrors.NewInvalidArgument("Cannot delete yourself")
	}

	cur.IsActive = false
	cur.UpdatedAt = time.Now()
	if _, err := s.repo.UpdateUser(ctx, cur); err != nil {
		return customErrors.WrapInternal(err, "Deactivate")
	}
	s.log.Info("user deactivated", zap.Int64("user_id", id), zap.Int64("by", actor.ID))
	return nil
}

func (s *Service) Restore(ctx context.Context, actor model.User, id int64) (model.User, error) {
	if _, err := policy.RequireSuperuser(actor); err != nil {
		return model.User{}, err
	}
	cur, err := s.load(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if cur.IsActive {
		return model.User{}, customErrors.NewInvalidArgument("User is already active")
	}

	cur.IsActive = true
	cur.UpdatedAt = time.Now()
	updated, err := s.repo.UpdateUser(ctx, cur)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Restore")
	}
	return sanitize(updated), nil
}

func (s *Service) load(ctx context.Context, id int64) (model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.NewNotFound("user")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}
	return u, nil
}

// applyUserUpdate накладывает заданные поля DTO; пароль обрабатывается отдельно.
func applyUserUpdate(u model.User, in dto.UserUpdateDTO) model.User {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	return u
}

func sanitize(u model.User) model.User {
	u.HashedPassword = ""
	return u
}
