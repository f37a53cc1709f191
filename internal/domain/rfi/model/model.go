package model

import (
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string        `json:"name" gorm:"size:200;not null"`
	Description string        `json:"description" gorm:"type:text"`
	Code        string        `json:"project_code" gorm:"column:project_code;size:50;uniqueIndex;not null"`
	Status      ProjectStatus `json:"status" gorm:"size:20;not null"`
	OwnerID     int64         `json:"owner_id" gorm:"index;not null"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"not null"`
}

type ProjectFilter struct {
	Search  string
	Status  ProjectStatus
	OwnerID *int64
	Skip    int
	Limit   int
}

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

type RFI struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Number         string     `json:"rfi_no" gorm:"column:rfi_no;size:50;uniqueIndex;not null"`
	Date           time.Time  `json:"rfi_date" gorm:"column:rfi_date;type:date;index;not null"`
	InspectionDate *time.Time `json:"inspection_date" gorm:"type:date"`
	EndDate        *time.Time `json:"end_date" gorm:"type:date"`

	ProjectID    *int64 `json:"project_id" gorm:"index"`
	DisciplineID *int64 `json:"discipline_id" gorm:"index"`
	TypeID       *int64 `json:"type_id"`
	LocationID   *int64 `json:"location_id"`
	SystemID     *int64 `json:"system_id"`
	SubsystemID  *int64 `json:"subsystem_id"`
	UnitID       *int64 `json:"unit_id"`
	AreaID       *int64 `json:"area_id"`
	CompanyID    *int64 `json:"company_id"`

	Applicant  string `json:"applicant" gorm:"size:100;index"`
	Performer  string `json:"performer" gorm:"size:100"`
	TPI        string `json:"tpi" gorm:"column:tpi;size:100"`
	HeadQC     string `json:"head_qc" gorm:"column:head_qc;size:100"`
	QC         string `json:"qc" gorm:"column:qc;size:100"`
	Inspector  string `json:"inspector" gorm:"size:100"`
	Contractor string `json:"contractor" gorm:"size:100"`

	Accepted  bool   `json:"accepted" gorm:"not null"`
	Rejected  bool   `json:"rejected" gorm:"not null"`
	Cancelled bool   `json:"cancelled" gorm:"not null"`
	Status    string `json:"status" gorm:"size:50;index"`
	Step      string `json:"step" gorm:"size:50"`

	TagNo          string `json:"tag_no" gorm:"size:100;index"`
	EquipmentName  string `json:"equipment_name" gorm:"size:200"`
	OutOfService   bool   `json:"out_of_service" gorm:"not null"`
	InService      bool   `json:"in_service" gorm:"not null"`
	ReadyToService bool   `json:"ready_to_service" gorm:"not null"`

	Note       string `json:"note" gorm:"type:text"`
	Attachment string `json:"attachment" gorm:"size:500"`

	CreatorID int64     `json:"creator_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (RFI) TableName() string { return "rfis" }

// Approve возвращает копию с выставленными флагами одобрения.
func (r RFI) Approve(inspector string) RFI {
	r.Accepted = true
	r.Rejected = false
	r.Status = StatusApproved
	r.Inspector = inspector
	return r
}

func (r RFI) Reject(inspector, reason string) RFI {
	r.Rejected = true
	r.Accepted = false
	r.Status = StatusRejected
	r.Inspector = inspector
	r.Note = prependNote("Rejected: "+reason, r.Note)
	return r
}

func (r RFI) Cancel(reason string) RFI {
	r.Cancelled = true
	r.Status = StatusCancelled
	if reason != "" {
		r.Note = prependNote("Cancelled: "+reason, r.Note)
	}
	return r
}

func (r RFI) IsPending() bool {
	return !r.Accepted && !r.Rejected && !r.Cancelled
}

func prependNote(head, old string) string {
	if strings.TrimSpace(old) == "" {
		return head
	}
	return head + " | " + old
}

type RFIFilter struct {
	Number        string
	TagNo         string
	EquipmentName string
	Status        string
	ProjectID     *int64
	DisciplineID  *int64
	Applicant     string
	DateFrom      *time.Time
	DateTo        *time.Time
	PendingOnly   bool
	Skip          int
	Limit         int
}

type Statistics struct {
	Total     int64 `json:"total"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
	Pending   int64 `json:"pending"`
}
