package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/rfi/model"
	"gorm.io/gorm"
)

var rfiUpdateColumns = []string{
	"rfi_no", "rfi_date", "inspection_date", "end_date",
	"project_id", "discipline_id", "type_id", "location_id", "system_id",
	"subsystem_id", "unit_id", "area_id", "company_id",
	"applicant", "performer", "tpi", "head_qc", "qc", "inspector", "contractor",
	"accepted", "rejected", "cancelled", "status", "step",
	"tag_no", "equipment_name", "out_of_service", "in_service", "ready_to_service",
	"note", "attachment", "updated_at",
}

type PostgresRFIRepo struct {
	db *gorm.DB
}

func NewPostgresRFIRepo(db *gorm.DB) *PostgresRFIRepo {
	return &PostgresRFIRepo{db: db}
}

func (p *PostgresRFIRepo) CreateRFI(ctx context.Context, r model.RFI) (model.RFI, error) {
	if err := p.db.WithContext(ctx).Create(&r).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.RFI{}, customErrors.NewAlreadyExists("RFI number")
		}
		return model.RFI{}, customErrors.WrapInternal(err, "CreateRFI")
	}
	return r, nil
}

func (p *PostgresRFIRepo) GetRFIByID(ctx context.Context, id int64) (model.RFI, error) {
	return p.first(ctx, "GetRFIByID", "id = ?", id)
}

func (p *PostgresRFIRepo) GetRFIByNumber(ctx context.Context, number string) (model.RFI, error) {
	return p.first(ctx, "GetRFIByNumber", "rfi_no = ?", number)
}

func (p *PostgresRFIRepo) first(ctx context.Context, op, query string, arg any) (model.RFI, error) {
	var r model.RFI
	res := p.db.WithContext(ctx).Where(query, arg).First(&r)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.RFI{}, customErrors.NewNotFound("RFI")
	}
	if err := res.Error; err != nil {
		return model.RFI{}, customErrors.WrapInternal(err, op)
	}
	return r, nil
}

func (p *PostgresRFIRepo) SearchRFIs(ctx context.Context, f model.RFIFilter) ([]model.RFI, int64, error) {
	q := p.db.WithContext(ctx).Model(&model.RFI{})
	if f.Number != "" {
		q = q.Where(containsExpr("rfi_no"), likePattern(f.Number))
	}
	if f.TagNo != "" {
		q = q.Where(containsExpr("tag_no"), likePattern(f.TagNo))
	}
	if f.EquipmentName != "" {
		q = q.Where(containsExpr("equipment_name"), likePattern(f.EquipmentName))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.DisciplineID != nil {
		q = q.Where("discipline_id = ?", *f.DisciplineID)
	}
	if f.Applicant != "" {
		q = q.Where(containsExpr("applicant"), likePattern(f.Applicant))
	}
	if f.DateFrom != nil {
		q = q.Where("rfi_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("rfi_date <= ?", *f.DateTo)
	}
	if f.PendingOnly {
		q = q.Where("accepted = ? AND rejected = ? AND cancelled = ?", false, false, false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "SearchRFIs count")
	}

	var rfis []model.RFI
	if err := q.Order("rfi_date DESC, id DESC").Offset(f.Skip).Limit(f.Limit).Find(&rfis).Error; err != nil {
		return nil, 0, customErrors.WrapInternal(err, "SearchRFIs")
	}
	return rfis, total, nil
}

func (p *PostgresRFIRepo) UpdateRFI(ctx context.Context, r model.RFI) (model.RFI, error) {
	r.UpdatedAt = time.Now()
	res := p.db.WithContext(ctx).
		Model(&model.RFI{ID: r.ID}).
		Select(rfiUpdateColumns).
		Updates(&r)
	if err := res.Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.RFI{}, customErrors.NewAlreadyExists("RFI number")
		}
		return model.RFI{}, customErrors.WrapInternal(err, "UpdateRFI")
	}
	if res.RowsAffected == 0 {
		return model.RFI{}, customErrors.NewNotFound("RFI")
	}
	return p.GetRFIByID(ctx, r.ID)
}

func (p *PostgresRFIRepo) DeleteRFI(ctx context.Context, id int64) error {
	res := p.db.WithContext(ctx).Delete(&model.RFI{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteRFI")
	}
	if res.RowsAffected == 0 {
		return customErrors.NewNotFound("RFI")
	}

	return nil
}

// Statistics считает всё одним запросом; CASE работает и в postgres, и в sqlite.
func (p *PostgresRFIRepo) Statistics(ctx context.Context, projectID *int64) (model.Statistics, error) {
	q := p.db.WithContext(ctx).Model(&model.RFI{}).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN accepted THEN 1 ELSE 0 END), 0) AS approved,
		COALESCE(SUM(CASE WHEN rejected THEN 1 ELSE 0 END), 0) AS rejected,
		COALESCE(SUM(CASE WHEN cancelled THEN 1 ELSE 0 END), 0) AS cancelled,
		COALESCE(SUM(CASE WHEN NOT accepted AND NOT rejected AND NOT cancelled THEN 1 ELSE 0 END), 0) AS pending`)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}

	var stats model.Statistics
	if err := q.Scan(&stats).Error; err != nil {
		return model.Statistics{}, customErrors.WrapInternal(err, "Statistics")
	}
	return stats, nil
}
