package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	NeedsRehash(hash string) bool
	BurnCompare(plain string)
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	jwtUtil   jwt.JWTUtil
	hasher    PasswordHasher
	v         *validator.Validate
	log       *zap.Logger
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.Session, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
	// Resolve превращает access-токен в активного пользователя.
	Resolve(ctx context.Context, accessToken string) (model.User, error)
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	jm jwt.JWTUtil,
	h PasswordHasher,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm, hasher: h, v: v, log: log,
	}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	if err := CheckUnique(ctx, a.userRepo, in.Username, in.Email); err != nil {
		return model.User{}, err
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userRepo.CreateUser(ctx, model.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hash,
		IsActive:       true,
	})
	if err != nil {
		if customErrors.IsDuplicate(err) {
			return model.User{}, err
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}
	return sanitize(user), nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByUsername(ctx, in.Username)
	switch {
	case customErrors.IsNotFound(err):
		a.hasher.BurnCompare(in.Password)
		return model.Session{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(in.Password, user.HashedPassword) {
		return model.Session{}, customErrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return model.Session{}, customErrors.ErrInactiveUser
	}

	if a.hasher.NeedsRehash(user.HashedPassword) {
		a.rehash(ctx, user.ID, in.Password)
	}

	pair, err := a.issueTokens(user.ID)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{TokenPair: pair, User: sanitize(user)}, nil
}

// rehash переводит хэш на текущую схему; неудача не должна ломать логин.
func (a *authService) rehash(ctx context.Context, userID int64, plain string) {
	hash, err := a.hasher.Hash(plain)
	if err == nil {
		err = a.userRepo.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		a.log.Warn("password rehash failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	a.log.Info("password rehashed", zap.Int64("user_id", userID))
}

func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	user, err := a.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !user.IsActive {
		return model.TokenPair{}, customErrors.ErrInactiveUser
	}

	// ротация: старый refresh-токен одноразовый
	fresh, err := a.tokenRepo.Revoke(ctx, claims.ID, a.deadline(claims))
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if !fresh {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	return a.issueTokens(user.ID)
}

func (a *authService) Logout(ctx context.Context, in dto.LogoutDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	acc, err := a.jwtUtil.ValidateAccessToken(in.AccessToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}
	if err := a.tokenRepo.RevokeAccess(ctx, acc.ID, a.deadline(acc)); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	if in.RefreshToken == "" {
		return nil
	}
	// чужой или битый refresh просто игнорируем: logout идемпотентен
	rc, err := a.jwtUtil.ValidateRefreshToken(in.RefreshToken)
	if err != nil || rc.Subject != acc.Subject {
		return nil
	}
	if _, err := a.tokenRepo.Revoke(ctx, rc.ID, a.deadline(rc)); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

// deadline – до какого момента токен ещё пройдёт Decode; столько и держим отзыв.
func (a *authService) deadline(c jwt.Claims) time.Time {
	return c.ExpiresAt.Add(a.jwtUtil.Leeway())
}

func (a *authService) Resolve(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Resolve")
	}
	if revoked {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := a.lookupSubject(ctx, claims.Subject)
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, customErrors.ErrInactiveUser
	}
	return sanitize(user), nil
}

// lookupSubject: отсутствующий пользователь неотличим от битого токена.
func (a *authService) lookupSubject(ctx context.Context, sub string) (model.User, error) {
	uid, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrInvalidToken
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}
	return user, nil
}

func (a *authService) issueTokens(uid int64) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, jti, err := a.jwtUtil.GenerateRefreshToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now).Round(time.Second),
		RefreshTTL:      rtExp.Sub(now).Round(time.Second),
		UserID:          uid,
		RefreshTokenJTI: jti,
	}, nil
}

func sanitize(u model.User) model.User {
	u.HashedPassword = ""
	return u
}
