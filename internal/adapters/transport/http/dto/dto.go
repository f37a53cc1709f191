package dto

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
)

const DateLayout = "2006-01-02"

/* ───────────────────────────── auth ───────────────────────────── */

type RegisterDTO struct {
	Username string `json:"username"  form:"username"  validate:"required,username"`
	Email    string `json:"email"     form:"email"     validate:"required,email,max=100"`
	Password string `json:"password"  form:"password"  validate:"required,strongpwd"`
	FullName string `json:"full_name" form:"full_name" validate:"max=100"`
}

type LoginDTO struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}

type LogoutDTO struct {
	AccessToken  string `json:"-" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func NewTokenResponse(s model.Session) TokenResponse {
	return TokenResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.AccessTTL.Seconds()),
		User:         NewUserResponse(s.User),
	}
}

func NewRefreshResponse(p model.TokenPair) RefreshResponse {
	return RefreshResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(p.AccessTTL.Seconds()),
	}
}

/* ───────────────────────────── users ───────────────────────────── */

// UserResponse – публичное представление пользователя, без хэша пароля.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type UserListQuery struct {
	Search      string `form:"search"       validate:"max=100"`
	IsActive    *bool  `form:"is_active"`
	IsSuperuser *bool  `form:"is_superuser"`
	Skip        int    `form:"skip,default=0"    validate:"min=0"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

type UserCreateDTO struct {
	Username    string `json:"username"     validate:"required,username"`
	Email       string `json:"email"        validate:"required,email,max=100"`
	Password    string `json:"password"     validate:"required,strongpwd"`
	FullName    string `json:"full_name"    validate:"max=100"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

type UserUpdateDTO struct {
	Username    *string `json:"username"     validate:"omitempty,username"`
	Email       *string `json:"email"        validate:"omitempty,email,max=100"`
	FullName    *string `json:"full_name"    validate:"omitempty,max=100"`
	Password    *string `json:"password"     validate:"omitempty,strongpwd"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func NewUserPageResponse(p model.UserPage) Page[UserResponse] {
	items := make([]UserResponse, 0, len(p.Items))
	for _, u := range p.Items {
		items = append(items, NewUserResponse(u))
	}
	return NewPage(items, p.Total, p.Skip, p.Limit)
}

/* ───────────────────────────── pagination ───────────────────────────── */

type PageQuery struct {
	Skip  int `form:"skip,default=0"    validate:"min=0"`
	Limit int `form:"limit,default=100" validate:"min=1,max=1000"`
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

func NewPage[T any](items []T, total int64, skip, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Skip: skip, Limit: limit}
}

/* ───────────────────────────── projects ───────────────────────────── */

type ProjectCreateDTO struct {
	Name        string `json:"name"         validate:"required,max=200"`
	Description string `json:"description"`
	Code        string `json:"project_code" validate:"required,max=50"`
	Status      string `json:"status"       validate:"omitempty,oneof=planning active on_hold completed cancelled"`
}

type ProjectUpdateDTO struct {
	Name        *string `json:"name"         validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Code        *string `json:"project_code" validate:"omitempty,min=1,max=50"`
	Status      *string `json:"status"       validate:"omitempty,oneof=planning active on_hold completed cancelled"`
}

type ProjectListQuery struct {
	Search  string `form:"search"   validate:"max=100"`
	Status  string `form:"status"   validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	OwnerID *int64 `form:"owner_id"`
	Skip    int    `form:"skip,default=0"    validate:"min=0"`
	Limit   int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

/* ───────────────────────────── RFIs ───────────────────────────── */

type RFICreateDTO struct {
	Number         string `json:"rfi_no"          validate:"required,max=50"`
	Date           string `json:"rfi_date"        validate:"required,datetime=2006-01-02"`
	InspectionDate string `json:"inspection_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"end_date"        validate:"omitempty,datetime=2006-01-02"`

	ProjectID    *int64 `json:"project_id"`
	DisciplineID *int64 `json:"discipline_id"`
	TypeID       *int64 `json:"type_id"`
	LocationID   *int64 `json:"location_id"`
	SystemID     *int64 `json:"system_id"`
	SubsystemID  *int64 `json:"subsystem_id"`
	UnitID       *int64 `json:"unit_id"`
	AreaID       *int64 `json:"area_id"`
	CompanyID    *int64 `json:"company_id"`

	Applicant  string `json:"applicant"  validate:"max=100"`
	Performer  string `json:"performer"  validate:"max=100"`
	TPI        string `json:"tpi"        validate:"max=100"`
	HeadQC     string `json:"head_qc"    validate:"max=100"`
	QC         string `json:"qc"         validate:"max=100"`
	Inspector  string `json:"inspector"  validate:"max=100"`
	Contractor string `json:"contractor" validate:"max=100"`

	Step           string `json:"step"           validate:"max=50"`
	TagNo          string `json:"tag_no"         validate:"max=100"`
	EquipmentName  string `json:"equipment_name" validate:"max=200"`
	OutOfService   bool   `json:"out_of_service"`
	InService      bool   `json:"in_service"`
	ReadyToService bool   `json:"ready_to_service"`
	Note           string `json:"note"`
	Attachment     string `json:"attachment" validate:"max=500"`
}

// RFIUpdateDTO: nil – поле не трогаем.
type RFIUpdateDTO struct {
	Number         *string `json:"rfi_no"          validate:"omitempty,min=1,max=50"`
	Date           *string `json:"rfi_date"        validate:"omitempty,datetime=2006-01-02"`
	InspectionDate *string `json:"inspection_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string `json:"end_date"        validate:"omitempty,datetime=2006-01-02"`

	ProjectID    *int64 `json:"project_id"`
	DisciplineID *int64 `json:"discipline_id"`
	TypeID       *int64 `json:"type_id"`
	LocationID   *int64 `json:"location_id"`
	SystemID     *int64 `json:"system_id"`
	SubsystemID  *int64 `json:"subsystem_id"`
	UnitID       *int64 `json:"unit_id"`
	AreaID       *int64 `json:"area_id"`
	CompanyID    *int64 `json:"company_id"`

	Applicant  *string `json:"applicant"  validate:"omitempty,max=100"`
	Performer  *string `json:"performer"  validate:"omitempty,max=100"`
	TPI        *string `json:"tpi"        validate:"omitempty,max=100"`
	HeadQC     *string `json:"head_qc"    validate:"omitempty,max=100"`
	QC         *string `json:"qc"         validate:"omitempty,max=100"`
	Inspector  *string `json:"inspector"  validate:"omitempty,max=100"`
	Contractor *string `json:"contractor" validate:"omitempty,max=100"`

	Step           *string `json:"step"           validate:"omitempty,max=50"`
	TagNo          *string `json:"tag_no"         validate:"omitempty,max=100"`
	EquipmentName  *string `json:"equipment_name" validate:"omitempty,max=200"`
	OutOfService   *bool   `json:"out_of_service"`
	InService      *bool   `json:"in_service"`
	ReadyToService *bool   `json:"ready_to_service"`
	Note           *string `json:"note"`
	Attachment     *string `json:"attachment" validate:"omitempty,max=500"`
}

type RFISearchQuery struct {
	Number        string `form:"rfi_no"         validate:"max=50"`
	TagNo         string `form:"tag_no"         validate:"max=100"`
	EquipmentName string `form:"equipment_name" validate:"max=200"`
	Status        string `form:"status"         validate:"max=50"`
	ProjectID     *int64 `form:"project_id"`
	DisciplineID  *int64 `form:"discipline_id"`
	Applicant     string `form:"applicant"      validate:"max=100"`
	DateFrom      string `form:"date_from"      validate:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to"        validate:"omitempty,datetime=2006-01-02"`
	Skip          int    `form:"skip,default=0"    validate:"min=0"`
	Limit         int    `form:"limit,default=100" validate:"min=1,max=1000"`
}

type RFIReasonDTO struct {
	Reason string `form:"reason" json:"reason" validate:"max=500"`
}
