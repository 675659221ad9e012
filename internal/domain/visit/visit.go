package visit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Vitals struct {
	BloodPressureSystolic  *int     `json:"bp_systolic,omitempty"`
	BloodPressureDiastolic *int     `json:"bp_diastolic,omitempty"`
	HeartRateBPM           *int     `json:"heart_rate_bpm,omitempty"`
	TemperatureCelsius     *float64 `json:"temperature_celsius,omitempty"`
	WeightKg               *float64 `json:"weight_kg,omitempty"`
	OxygenSaturation       *float64 `json:"oxygen_saturation,omitempty"`
}

// Visit is the clinical record of a completed appointment.
// Once created, visits cannot be edited.
type Visit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`

	VisitDate datatypes.Date `gorm:"column:visit_date;not null;index" json:"visit_date"`
	Diagnosis string         `gorm:"column:diagnosis;type:text" json:"diagnosis"`
	Notes     string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Vitals    *Vitals        `gorm:"column:vitals;type:jsonb;serializer:json" json:"vitals,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Visit) TableName() string {
	return "clinical.visits"
}

type CompleteAppointmentCommand struct {
	Diagnosis string
	Notes     string
	Vitals    *Vitals
	CreatedBy uuid.UUID
}

type ListVisitsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	// Uninvoiced limits the result to visits without an invoice.
	Uninvoiced bool
	Page       int
	PageSize   int
}

type PagedVisits struct {
	Visits     []*Visit
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
