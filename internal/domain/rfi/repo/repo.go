package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
)

type ProjectRepo interface {
	CreateProject(ctx context.Context, p model.Project) (model.Project, error)
	GetProjectByID(ctx context.Context, id int64) (model.Project, error)
	GetProjectByCode(ctx context.Context, code string) (model.Project, error)
	ListProjects(ctx context.Context, filter model.ProjectFilter) ([]model.Project, int64, error)
	UpdateProject(ctx context.Context, p model.Project) (model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

type RFIRepo interface {
	CreateRFI(ctx context.Context, r model.RFI) (model.RFI, error)
	GetRFIByID(ctx context.Context, id int64) (model.RFI, error)
	GetRFIByNumber(ctx context.Context, number string) (model.RFI, error)
	SearchRFIs(ctx context.Context, filter model.RFIFilter) ([]model.RFI, int64, error)
	UpdateRFI(ctx context.Context, r model.RFI) (model.RFI, error)
	DeleteRFI(ctx context.Context, id int64) error
	Statistics(ctx context.Context, projectID *int64) (model.Statistics, error)
}
