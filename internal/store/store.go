// Package store defines the transactional entity store shared by every
// workflow service. Each service operation runs inside exactly one
// WithTransaction call.
package store

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
)

// Tx exposes the repositories bound to one open transaction.
// Repositories must not be used after the transaction function returns.
type Tx interface {
	Patients() patient.Repository
	Doctors() doctor.Repository
	Rooms() room.Repository
	Appointments() appointment.Repository
	Visits() visit.Repository
	Medications() medication.Repository
	Prescriptions() prescription.Repository
	Invoices() invoice.Repository
	Payments() invoice.PaymentRepository
	Users() domain.UserRepository
	AuditLogs() domain.AuditRepository
}

type Store interface {
	// WithTransaction runs fn in a transaction. It commits when fn returns nil
	// and rolls back when fn returns an error or panics.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page and pageSize to the accepted range.
func NormalizePage(page, pageSize int) (int, int) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize
}

func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
