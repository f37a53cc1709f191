package projects_test

import (
	"context"
	"testing"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/projects"
	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	owner = authModel.User{ID: 1, Username: "owner", IsActive: true}
	other = authModel.User{ID: 2, Username: "other", IsActive: true}
	admin = authModel.User{ID: 3, Username: "admin", IsActive: true, IsSuperuser: true}
)

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) *projects.Service {
	t.Helper()
	repo := postgres.NewPostgresProjectRepo(testutil.OpenDB(t))
	return projects.New(repo, dto.NewValidator(), zap.NewNop())
}

func TestProjects_CreateDefaults(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Refinery", Code: "REF-01"})
	require.NoError(t, err)
	require.Equal(t, model.ProjectPlanning, p.Status)
	require.Equal(t, owner.ID, p.OwnerID)

	_, err = svc.Create(ctx, other, dto.ProjectCreateDTO{Name: "Dup", Code: "REF-01"})
	require.True(t, customErrors.IsAlreadyExists(err))

	_, err = svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Bad", Code: "X", Status: "archived"})
	require.True(t, customErrors.IsInvalidArgument(err))

	_, err = svc.Create(ctx, owner, dto.ProjectCreateDTO{Code: "NO-NAME"})
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestProjects_ListAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Refinery", Code: "REF-01", Status: "active"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, dto.ProjectCreateDTO{Name: "Pipeline", Code: "PIPE-02"})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, dto.ProjectListQuery{Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	items, total, err = svc.List(ctx, dto.ProjectListQuery{Search: "pipe", Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "PIPE-02", items[0].Code)

	_, total, err = svc.List(ctx, dto.ProjectListQuery{OwnerID: ptr(owner.ID), Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, model.ProjectActive, got.Status)

	_, err = svc.Get(ctx, 999)
	require.True(t, customErrors.IsNotFound(err))
}

func TestProjects_UpdateOwnership(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Refinery", Code: "REF-01"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Other", Code: "REF-02"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, p.ID, dto.ProjectUpdateDTO{Name: ptr("Hijack")})
	require.ErrorIs(t, err, customErrors.ErrForbidden)

	upd, err := svc.Update(ctx, owner, p.ID, dto.ProjectUpdateDTO{Status: ptr("on_hold"), Description: ptr("phase 2")})
	require.NoError(t, err)
	require.Equal(t, model.ProjectOnHold, upd.Status)
	require.Equal(t, "Refinery", upd.Name)

	_, err = svc.Update(ctx, admin, p.ID, dto.ProjectUpdateDTO{Code: ptr("REF-02")})
	require.True(t, customErrors.IsAlreadyExists(err))

	upd, err = svc.Update(ctx, admin, p.ID, dto.ProjectUpdateDTO{Code: ptr("REF-01")})
	require.NoError(t, err, "unchanged code is not a conflict")
	require.Equal(t, "REF-01", upd.Code)

	_, err = svc.Update(ctx, admin, 999, dto.ProjectUpdateDTO{Name: ptr("x")})
	require.True(t, customErrors.IsNotFound(err))
}

func TestProjects_Delete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, dto.ProjectCreateDTO{Name: "Refinery", Code: "REF-01"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, other, p.ID), customErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, p.ID))
	require.True(t, customErrors.IsNotFound(svc.Delete(ctx, admin, p.ID)))
}
