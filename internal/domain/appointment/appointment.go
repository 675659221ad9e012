package appointment

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// State transitions possibilities:
//
//	SCHEDULED → COMPLETED
//	SCHEDULED → CANCELLED
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`
	RoomID    uuid.UUID `gorm:"column:room_id;type:uuid;not null;index" json:"room_id"`

	Date      datatypes.Date `gorm:"column:appt_date;not null;index" json:"date"`
	StartTime datatypes.Time `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   datatypes.Time `gorm:"column:end_time;not null" json:"end_time"`
	Status    Status         `gorm:"column:status;type:varchar(20);not null;default:'SCHEDULED';index" json:"status"`
	Notes     string         `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Cancellation tracking
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

func (a *Appointment) Slot() Slot {
	return Slot{Date: a.Date, Start: a.StartTime, End: a.EndTime}
}

// Blocks reports whether the appointment still occupies its doctor and room.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusScheduled: {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) Cancel(reason string, now time.Time) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return a.transitionError(StatusCancelled)
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	return nil
}

func (a *Appointment) Complete(now time.Time) error {
	if !a.CanTransitionTo(StatusCompleted) {
		return a.transitionError(StatusCompleted)
	}
	a.Status = StatusCompleted
	a.CompletedAt = &now
	return nil
}

func (a *Appointment) transitionError(to Status) error {
	return &domain.InvalidStateError{
		Resource: "appointment",
		ID:       a.ID,
		From:     string(a.Status),
		To:       string(to),
	}
}

type CreateAppointmentCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	RoomID    uuid.UUID
	Date      datatypes.Date
	StartTime datatypes.Time
	EndTime   datatypes.Time
	Notes     string
	CreatedBy uuid.UUID
}

type CancelAppointmentCommand struct {
	Reason string
}

// OverlapQuery selects blocking appointments of one doctor or one room that
// intersect Slot. Exactly one of DoctorID and RoomID is set.
type OverlapQuery struct {
	DoctorID *uuid.UUID
	RoomID   *uuid.UUID
	Slot     Slot
}

type ListAppointmentsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	RoomID    *uuid.UUID
	Status    *Status
	DateFrom  *datatypes.Date
	DateTo    *datatypes.Date
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
