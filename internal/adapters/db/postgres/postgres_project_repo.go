package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
	"gorm.io/gorm"
)

var projectUpdateColumns = []string{
	"name", "description", "project_code", "status", "updated_at",
}

type PostgresProjectRepo struct {
	db *gorm.DB
}

func NewPostgresProjectRepo(db *gorm.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

func (p *PostgresProjectRepo) CreateProject(ctx context.Context, project model.Project) (model.Project, error) {
	if err := p.db.WithContext(ctx).Create(&project).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.Project{}, customErrors.NewAlreadyExists("project code")
		}
		return model.Project{}, customErrors.WrapInternal(err, "CreateProject")
	}
	return project, nil
}

func (p *PostgresProjectRepo) GetProjectByID(ctx context.Context, id int64) (model.Project, error) {
	return p.first(ctx, "GetProjectByID", "id = ?", id)
}

func (p *PostgresProjectRepo) GetProjectByCode(ctx context.Context, code string) (model.Project, error) {
	return p.first(ctx, "GetProjectByCode", "project_code = ?", code)
}

func (p *PostgresProjectRepo) first(ctx context.Context, op, query string, arg any) (model.Project, error) {
	var project model.Project
	res := p.db.WithContext(ctx).Where(query, arg).First(&project)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Project{}, customErrors.NewNotFound("project")
	}
	if err := res.Error; err != nil {
		return model.Project{}, customErrors.WrapInternal(err, op)
	}
	return project, nil
}

func (p *PostgresProjectRepo) ListProjects(ctx context.Context, f model.ProjectFilter) ([]model.Project, int64, error) {
	q := p.db.WithContext(ctx).Model(&model.Project{})
	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where("("+containsExpr("name")+" OR "+containsExpr("project_code")+")", like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListProjects count")
	}

	var projects []model.Project
	if err := q.Order("id").Offset(f.Skip).Limit(f.Limit).Find(&projects).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListProjects")
	}
	return projects, total, nil
}

func (p *PostgresProjectRepo) UpdateProject(ctx context.Context, project model.Project) (model.Project, error) {
	project.UpdatedAt = time.Now()
	res := p.db.WithContext(ctx).
		Model(&model.Project{ID: project.ID}).
		Select(projectUpdateColumns).
		Updates(&project)
	if err := res.Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.Project{}, customErrors.NewAlreadyExists("project code")
		}
		return model.Project{}, customErrors.WrapInternal(err, "UpdateProject")
	}
	if res.RowsAffected == 0 {
		return model.Project{}, customErrors.NewNotFound("project")
	}
	return p.GetProjectByID(ctx, project.ID)
}

func (p *PostgresProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	res := p.db.WithContext(ctx).Delete(&model.Project{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteProject")
	}
	if res.RowsAffected == 0 {
		return customErrors.NewNotFound("project")
	}

	return nil
}
