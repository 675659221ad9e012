package prescription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	VisitID      uuid.UUID `gorm:"column:visit_id;type:uuid;not null;index" json:"visit_id"`
	MedicationID uuid.UUID `gorm:"column:medication_id;type:uuid;not null;index" json:"medication_id"`

	Quantity int    `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`
	Dosage   string `gorm:"column:dosage;type:varchar(200)" json:"dosage"` // e.g. "1-0-1 for 5 days"

	// UnitPrice is the catalogue price when the prescription was written.
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Prescription) TableName() string {
	return "pharmacy.prescriptions"
}

type CreatePrescriptionCommand struct {
	VisitID      uuid.UUID
	MedicationID uuid.UUID
	Quantity     int
	Dosage       string
	CreatedBy    uuid.UUID
}

type ListPrescriptionsQuery struct {
	VisitID  *uuid.UUID
	Page     int
	PageSize int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
