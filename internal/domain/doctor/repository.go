package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	// GetForUpdate loads the doctor and holds a row lock until the transaction ends.
	// Scheduling takes this lock to serialise bookings against the same doctor.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Doctor, error)

	List(ctx context.Context) ([]*Doctor, error)
}
