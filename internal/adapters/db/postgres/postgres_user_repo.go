package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	"gorm.io/gorm"
)

var userUpdateColumns = []string{
	"username", "email", "full_name", "is_active", "is_superuser", "updated_at",
}

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return model.User{}, userConflict(constraint)
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	return user, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return p.first(ctx, "GetUserByID", "id = ?", id)
}

func (p *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return p.first(ctx, "GetUserByUsername", "username = ?", username)
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.first(ctx, "GetUserByEmail", "email = ?", email)
}

func (p *PostgresUserRepo) first(ctx context.Context, op, query string, arg any) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where(query, arg).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.NewNotFound("user")
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}

	return u, nil
}

func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user model.User) (model.User, error) {
	if err := updateUser(p.db.WithContext(ctx), user); err != nil {
		return model.User{}, err
	}
	return p.GetUserByID(ctx, user.ID)
}

func (p *PostgresUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return updatePasswordHash(p.db.WithContext(ctx), id, hash)
}

// UpdateUserWithPassword сохраняет профиль и новый хэш в одной транзакции:
// либо применяется всё, либо ничего.
func (p *PostgresUserRepo) UpdateUserWithPassword(ctx context.Context, user model.User, hash string) (model.User, error) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateUser(tx, user); err != nil {
			return err
		}
		return updatePasswordHash(tx, user.ID, hash)
	})
	if err != nil {
		return model.User{}, err
	}
	return p.GetUserByID(ctx, user.ID)
}

func updateUser(db *gorm.DB, user model.User) error {
	user.UpdatedAt = time.Now()
	res := db.Model(&model.User{ID: user.ID}).
		Select(userUpdateColumns).
		Updates(&user)
	if err := res.Error; err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return userConflict(constraint)
		}
		return customErrors.WrapInternal(err, "UpdateUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.NewNotFound("user")
	}
	return nil
}

func updatePasswordHash(db *gorm.DB, id int64, hash string) error {
	res := db.Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"hashed_password": hash, "updated_at": time.Now()})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdatePasswordHash")
	}
	if res.RowsAffected == 0 {
		return customErrors.NewNotFound("user")
	}
	return nil
}

func (p *PostgresUserRepo) ListUsers(ctx context.Context, f model.UserFilter) ([]model.User, int64, error) {
	q := p.db.WithContext(ctx).Model(&model.User{})
	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where("("+containsExpr("username")+" OR "+containsExpr("email")+" OR "+containsExpr("full_name")+")", like, like, like)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.IsSuperuser != nil {
		q = q.Where("is_superuser = ?", *f.IsSuperuser)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListUsers count")
	}

	var users []model.User
	if err := q.Order("id").Offset(f.Skip).Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListUsers")
	}
	return users, total, nil
}

func userConflict(constraint string) error {
	switch {
	case strings.Contains(constraint, "username"):
		return customErrors.ErrDuplicateUsername
	case strings.Contains(constraint, "email"):
		return customErrors.ErrDuplicateEmail
	default:
		return customErrors.NewAlreadyExists("user")
	}
}
