package projects

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/policy"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
	repo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/repo"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Service struct {
	repo repo.ProjectRepo
	v    *validator.Validate
	log  *zap.Logger
}

func New(r repo.ProjectRepo, v *validator.Validate, log *zap.Logger) *Service {
	return &Service{repo: r, v: v, log: log}
}

func (s *Service) Create(ctx context.Context, actor authModel.User, in dto.ProjectCreateDTO) (model.Project, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Project{}, customErrors.NewInvalidArgument(err.Error())
	}
	if err := s.checkCode(ctx, in.Code); err != nil {
		return model.Project{}, err
	}

	status := model.ProjectStatus(in.Status)
	if status == "" {
		status = model.ProjectPlanning
	}

	p, err := s.repo.CreateProject(ctx, model.Project{
		Name:        in.Name,
		Description: in.Description,
		Code:        in.Code,
		Status:      status,
		OwnerID:     actor.ID,
	})
	if err != nil {
		return model.Project{}, passThrough(err, "CreateProject")
	}
	s.log.Info("project created", zap.Int64("project_id", p.ID), zap.String("code", p.Code))
	return p, nil
}

func (s *Service) List(ctx context.Context, q dto.ProjectListQuery) ([]model.Project, int64, error) {
	if err := s.v.Struct(q); err != nil {
		return nil, 0, customErrors.NewInvalidArgument(err.Error())
	}
	items, total, err := s.repo.ListProjects(ctx, model.ProjectFilter{
		Search:  q.Search,
		Status:  model.ProjectStatus(q.Status),
		OwnerID: q.OwnerID,
		Skip:    q.Skip,
		Limit:   q.Limit,
	})
	if err != nil {
		return nil, 0, customErrors.WrapInternal(err, "ListProjects")
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Project, error) {
	p, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return model.Project{}, passThrough(err, "GetProjectByID")
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor authModel.User, id int64, in dto.ProjectUpdateDTO) (model.Project, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Project{}, customErrors.NewInvalidArgument(err.Error())
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if err := policy.RequireSelfOrSuperuser(actor, cur.OwnerID); err != nil {
		return model.Project{}, err
	}
	if in.Code != nil && *in.Code != cur.Code {
		if err := s.checkCode(ctx, *in.Code); err != nil {
			return model.Project{}, err
		}
	}

	updated, err := s.repo.UpdateProject(ctx, applyProjectUpdate(cur, in))
	if err != nil {
		return model.Project{}, passThrough(err, "UpdateProject")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor authModel.User, id int64) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireSelfOrSuperuser(actor, cur.OwnerID); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return passThrough(err, "DeleteProject")
	}
	s.log.Info("project deleted", zap.Int64("project_id", id), zap.Int64("by", actor.ID))
	return nil
}

func (s *Service) checkCode(ctx context.Context, code string) error {
	_, err := s.repo.GetProjectByCode(ctx, code)
	switch {
	case err == nil:
		return customErrors.NewAlreadyExists("project code")
	case !customErrors.IsNotFound(err):
		return customErrors.WrapInternal(err, "GetProjectByCode")
	}
	return nil
}

func applyProjectUpdate(p model.Project, in dto.ProjectUpdateDTO) model.Project {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Code != nil {
		p.Code = *in.Code
	}
	if in.Status != nil {
		p.Status = model.ProjectStatus(*in.Status)
	}
	return p
}

// passThrough оставляет доменные ошибки как есть, остальное – internal.
func passThrough(err error, op string) error {
	if customErrors.IsNotFound(err) || customErrors.IsDuplicate(err) || customErrors.IsInvalidArgument(err) {
		return err
	}
	return customErrors.WrapInternal(err, op)
}
