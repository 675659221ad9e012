package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice bills one visit. A visit has at most one invoice.
type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	VisitID   uuid.UUID `gorm:"column:visit_id;type:uuid;not null;uniqueIndex" json:"visit_id"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`

	ConsultationFee decimal.Decimal `gorm:"column:consultation_fee;type:numeric(12,2);not null" json:"consultation_fee"`
	MedicationTotal decimal.Decimal `gorm:"column:medication_total;type:numeric(12,2);not null" json:"medication_total"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Currency        string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`

	Paid   bool       `gorm:"column:paid;not null;default:false;index" json:"paid"`
	PaidAt *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Invoice) TableName() string {
	return "billing.invoices"
}

// Settle marks the invoice paid once paidSoFar covers the total.
// It reports whether the invoice flipped to paid on this call.
func (i *Invoice) Settle(paidSoFar decimal.Decimal, now time.Time) bool {
	if i.Paid || paidSoFar.LessThan(i.TotalAmount) {
		return false
	}
	i.Paid = true
	i.PaidAt = &now
	return true
}

type Method string

const (
	MethodCash Method = "CASH"
	MethodCard Method = "CARD"
	MethodUPI  Method = "UPI"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI:
		return true
	}
	return false
}

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null;check:amount > 0" json:"amount"`
	Method    Method          `gorm:"column:method;type:varchar(10);not null" json:"method"`
	Reference string          `gorm:"column:reference;type:varchar(100)" json:"reference,omitempty"`

	ReceivedBy uuid.UUID `gorm:"column:received_by;type:uuid" json:"received_by"`
}

func (Payment) TableName() string {
	return "billing.payments"
}

type GenerateInvoiceCommand struct {
	VisitID   uuid.UUID
	CreatedBy uuid.UUID
}

type RecordPaymentCommand struct {
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     Method
	Reference  string
	ReceivedBy uuid.UUID
}

type ListInvoicesQuery struct {
	PatientID *uuid.UUID
	Paid      *bool
	Page      int
	PageSize  int
}

type PagedInvoices struct {
	Invoices   []*Invoice
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

// Statement is an invoice together with its payments.
type Statement struct {
	Invoice   *Invoice        `json:"invoice"`
	Payments  []*Payment      `json:"payments"`
	AmountDue decimal.Decimal `json:"amount_due"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type PagedPayments struct {
	Payments   []*Payment
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

// Receipt is the outcome of recording a payment. Settled reports whether this
// payment flipped the invoice to paid.
type Receipt struct {
	Payment   *Payment        `json:"payment"`
	Invoice   *Invoice        `json:"invoice"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Settled   bool            `json:"settled"`
}
