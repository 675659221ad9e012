package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns a domain.NotFoundError if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// List returns a paginated, filtered list of patients ordered by last name.
	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)
}
