package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Prescription, error)

	// List returns prescriptions newest first.
	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)
}
