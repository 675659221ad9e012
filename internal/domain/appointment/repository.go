package appointment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// GetForUpdate loads the appointment and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists the status and its tracking columns.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// FindOverlapping returns non-cancelled appointments that intersect q.Slot,
	// ordered by start time.
	FindOverlapping(ctx context.Context, q OverlapQuery) ([]*Appointment, error)

	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// ListScheduledBetween returns SCHEDULED appointments dated within [from, to]
	// ordered by date and start time. Used by the upcoming-appointments report.
	ListScheduledBetween(ctx context.Context, from, to datatypes.Date) ([]*Appointment, error)
}
