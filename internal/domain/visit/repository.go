package visit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	// GetForUpdate loads the visit and holds a row lock until the transaction ends.
	// Invoice generation takes it so two invoices cannot race for one visit.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Visit, error)

	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*Visit, error)

	// List returns visits newest first.
	List(ctx context.Context, q *ListVisitsQuery) (*PagedVisits, error)
}
