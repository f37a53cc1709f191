// Package rfi – жизненный цикл заявок на инспекцию (RFI): создание, поиск,
// согласование, отклонение, отмена.
package rfi

import (
	"context"
	"time"

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
	rfis     repo.RFIRepo
	projects repo.ProjectRepo
	v        *validator.Validate
	log      *zap.Logger
}

func New(rr repo.RFIRepo, pr repo.ProjectRepo, v *validator.Validate, log *zap.Logger) *Service {
	return &Service{rfis: rr, projects: pr, v: v, log: log}
}

func (s *Service) Create(ctx context.Context, actor authModel.User, in dto.RFICreateDTO) (model.RFI, error) {
	if err := s.v.Struct(in); err != nil {
		return model.RFI{}, customErrors.NewInvalidArgument(err.Error())
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return model.RFI{}, err
	}
	inspection, err := parseOptionalDate(in.InspectionDate)
	if err != nil {
		return model.RFI{}, err
	}
	end, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return model.RFI{}, err
	}

	r := model.RFI{
		Number:         in.Number,
		Date:           date,
		InspectionDate: inspection,
		EndDate:        end,
		ProjectID:      in.ProjectID,
		DisciplineID:   in.DisciplineID,
		TypeID:         in.TypeID,
		LocationID:     in.LocationID,
		SystemID:       in.SystemID,
		SubsystemID:    in.SubsystemID,
		UnitID:         in.UnitID,
		AreaID:         in.AreaID,
		CompanyID:      in.CompanyID,
		Applicant:      in.Applicant,
		Performer:      in.Performer,
		TPI:            in.TPI,
		HeadQC:         in.HeadQC,
		QC:             in.QC,
		Inspector:      in.Inspector,
		Contractor:     in.Contractor,
		Status:         model.StatusPending,
		Step:           in.Step,
		TagNo:          in.TagNo,
		EquipmentName:  in.EquipmentName,
		OutOfService:   in.OutOfService,
		InService:      in.InService,
		ReadyToService: in.ReadyToService,
		Note:           in.Note,
		Attachment:     in.Attachment,
		CreatorID:      actor.ID,
	}
	if err := s.checkConsistency(ctx, r); err != nil {
		return model.RFI{}, err
	}
	if err := s.checkNumber(ctx, r.Number); err != nil {
		return model.RFI{}, err
	}

	created, err := s.rfis.CreateRFI(ctx, r)
	if err != nil {
		return model.RFI{}, passThrough(err, "CreateRFI")
	}
	s.log.Info("rfi created",
		zap.Int64("rfi_id", created.ID),
		zap.String("rfi_no", created.Number),
		zap.Int64("creator_id", actor.ID),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context, q dto.PageQuery) ([]model.RFI, int64, error) {
	if err := s.v.Struct(q); err != nil {
		return nil, 0, customErrors.NewInvalidArgument(err.Error())
	}
	return s.search(ctx, model.RFIFilter{Skip: q.Skip, Limit: q.Limit})
}

func (s *Service) Search(ctx context.Context, q dto.RFISearchQuery) ([]model.RFI, int64, error) {
	if err := s.v.Struct(q); err != nil {
		return nil, 0, customErrors.NewInvalidArgument(err.Error())
	}
	from, err := parseOptionalDate(q.DateFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(q.DateTo)
	if err != nil {
		return nil, 0, err
	}

	return s.search(ctx, model.RFIFilter{
		Number:        q.Number,
		TagNo:         q.TagNo,
		EquipmentName: q.EquipmentName,
		Status:        q.Status,
		ProjectID:     q.ProjectID,
		DisciplineID:  q.DisciplineID,
		Applicant:     q.Applicant,
		DateFrom:      from,
		DateTo:        to,
		Skip:          q.Skip,
		Limit:         q.Limit,
	})
}

func (s *Service) Pending(ctx context.Context, q dto.PageQuery) ([]model.RFI, int64, error) {
	if err := s.v.Struct(q); err != nil {
		return nil, 0, customErrors.NewInvalidArgument(err.Error())
	}
	return s.search(ctx, model.RFIFilter{PendingOnly: true, Skip: q.Skip, Limit: q.Limit})
}

func (s *Service) search(ctx context.Context, f model.RFIFilter) ([]model.RFI, int64, error) {
	items, total, err := s.rfis.SearchRFIs(ctx, f)
	if err != nil {
		return nil, 0, customErrors.WrapInternal(err, "SearchRFIs")
	}
	return items, total, nil
}

func (s *Service) Statistics(ctx context.Context, projectID *int64) (model.Statistics, error) {
	stats, err := s.rfis.Statistics(ctx, projectID)
	if err != nil {
		return model.Statistics{}, customErrors.WrapInternal(err, "Statistics")
	}
	return stats, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.RFI, error) {
	r, err := s.rfis.GetRFIByID(ctx, id)
	if err != nil {
		return model.RFI{}, passThrough(err, "GetRFIByID")
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id int64, in dto.RFIUpdateDTO) (model.RFI, error) {
	if err := s.v.Struct(in); err != nil {
		return model.RFI{}, customErrors.NewInvalidArgument(err.Error())
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.RFI{}, err
	}

	next, err := applyRFIUpdate(cur, in)
	if err != nil {
		return model.RFI{}, err
	}
	if err := s.checkConsistency(ctx, next); err != nil {
		return model.RFI{}, err
	}
	if next.Number != cur.Number {
		if err := s.checkNumber(ctx, next.Number); err != nil {
			return model.RFI{}, err
		}
	}
	return s.save(ctx, next)
}

func (s *Service) Approve(ctx context.Context, actor authModel.User, id int64) (model.RFI, error) {
	cur, err := s.decidable(ctx, id)
	if err != nil {
		return model.RFI{}, err
	}
	out, err := s.save(ctx, cur.Approve(actor.DisplayName()))
	if err == nil {
		s.log.Info("rfi approved", zap.Int64("rfi_id", id), zap.Int64("by", actor.ID))
	}
	return out, err
}

func (s *Service) Reject(ctx context.Context, actor authModel.User, id int64, in dto.RFIReasonDTO) (model.RFI, error) {
	if err := s.v.Struct(in); err != nil {
		return model.RFI{}, customErrors.NewInvalidArgument(err.Error())
	}
	if in.Reason == "" {
		return model.RFI{}, customErrors.NewInvalidArgument("reason is required")
	}
	cur, err := s.decidable(ctx, id)
	if err != nil {
		return model.RFI{}, err
	}
	out, err := s.save(ctx, cur.Reject(actor.DisplayName(), in.Reason))
	if err == nil {
		s.log.Info("rfi rejected", zap.Int64("rfi_id", id), zap.Int64("by", actor.ID))
	}
	return out, err
}

func (s *Service) Cancel(ctx context.Context, actor authModel.User, id int64, in dto.RFIReasonDTO) (model.RFI, error) {
	if _, err := policy.RequireSuperuser(actor); err != nil {
		return model.RFI{}, err
	}
	if err := s.v.Struct(in); err != nil {
		return model.RFI{}, customErrors.NewInvalidArgument(err.Error())
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.RFI{}, err
	}
	out, err := s.save(ctx, cur.Cancel(in.Reason))
	if err == nil {
		s.log.Info("rfi cancelled", zap.Int64("rfi_id", id), zap.Int64("by", actor.ID))
	}
	return out, err
}

func (s *Service) Delete(ctx context.Context, actor authModel.User, id int64) error {
	if _, err := policy.RequireSuperuser(actor); err != nil {
		return err
	}
	if err := s.rfis.DeleteRFI(ctx, id); err != nil {
		return passThrough(err, "DeleteRFI")
	}
	s.log.Info("rfi deleted", zap.Int64("rfi_id", id), zap.Int64("by", actor.ID))
	return nil
}

// decidable: отменённую заявку нельзя ни одобрить, ни отклонить.
func (s *Service) decidable(ctx context.Context, id int64) (model.RFI, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.RFI{}, err
	}
	if cur.Cancelled {
		return model.RFI{}, customErrors.NewInvalidArgument("RFI is cancelled")
	}
	return cur, nil
}

func (s *Service) save(ctx context.Context, r model.RFI) (model.RFI, error) {
	out, err := s.rfis.UpdateRFI(ctx, r)
	if err != nil {
		return model.RFI{}, passThrough(err, "UpdateRFI")
	}
	return out, nil
}

func (s *Service) checkNumber(ctx context.Context, number string) error {
	_, err := s.rfis.GetRFIByNumber(ctx, number)
	switch {
	case err == nil:
		return customErrors.NewAlreadyExists("RFI number")
	case !customErrors.IsNotFound(err):
		return customErrors.WrapInternal(err, "GetRFIByNumber")
	}
	return nil
}

// checkConsistency: даты инспекции и окончания не раньше rfi_date, проект существует.
func (s *Service) checkConsistency(ctx context.Context, r model.RFI) error {
	if r.InspectionDate != nil && r.InspectionDate.Before(r.Date) {
		return customErrors.NewInvalidArgument("inspection_date must not precede rfi_date")
	}
	if r.EndDate != nil && r.EndDate.Before(r.Date) {
		return customErrors.NewInvalidArgument("end_date must not precede rfi_date")
	}
	if r.ProjectID == nil {
		return nil
	}
	_, err := s.projects.GetProjectByID(ctx, *r.ProjectID)
	switch {
	case customErrors.IsNotFound(err):
		return customErrors.NewInvalidArgument("project does not exist")
	case err != nil:
		return customErrors.WrapInternal(err, "GetProjectByID")
	}
	return nil
}

func applyRFIUpdate(r model.RFI, in dto.RFIUpdateDTO) (model.RFI, error) {
	if in.Number != nil {
		r.Number = *in.Number
	}
	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return model.RFI{}, err
		}
		r.Date = d
	}
	if in.InspectionDate != nil {
		d, err := parseOptionalDate(*in.InspectionDate)
		if err != nil {
			return model.RFI{}, err
		}
		r.InspectionDate = d
	}
	if in.EndDate != nil {
		d, err := parseOptionalDate(*in.EndDate)
		if err != nil {
			return model.RFI{}, err
		}
		r.EndDate = d
	}

	setID(&r.ProjectID, in.ProjectID)
	setID(&r.DisciplineID, in.DisciplineID)
	setID(&r.TypeID, in.TypeID)
	setID(&r.LocationID, in.LocationID)
	setID(&r.SystemID, in.SystemID)
	setID(&r.SubsystemID, in.SubsystemID)
	setID(&r.UnitID, in.UnitID)
	setID(&r.AreaID, in.AreaID)
	setID(&r.CompanyID, in.CompanyID)

	set(&r.Applicant, in.Applicant)
	set(&r.Performer, in.Performer)
	set(&r.TPI, in.TPI)
	set(&r.HeadQC, in.HeadQC)
	set(&r.QC, in.QC)
	set(&r.Inspector, in.Inspector)
	set(&r.Contractor, in.Contractor)
	set(&r.Step, in.Step)
	set(&r.TagNo, in.TagNo)
	set(&r.EquipmentName, in.EquipmentName)
	set(&r.OutOfService, in.OutOfService)
	set(&r.InService, in.InService)
	set(&r.ReadyToService, in.ReadyToService)
	set(&r.Note, in.Note)
	set(&r.Attachment, in.Attachment)
	return r, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setID(dst **int64, src *int64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, customErrors.NewInvalidArgument("invalid date " + s + ", expected YYYY-MM-DD")
	}
	return d, nil
}

// parseOptionalDate: пустая строка – даты нет.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func passThrough(err error, op string) error {
	if customErrors.IsNotFound(err) || customErrors.IsDuplicate(err) || customErrors.IsInvalidArgument(err) {
		return err
	}
	return customErrors.WrapInternal(err, op)
}
