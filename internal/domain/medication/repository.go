package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create returns ErrMedicationNameTaken when the name is already used.
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)

	// GetForUpdate loads the medication and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Medication, error)

	// UpdateStock persists m.StockQty.
	UpdateStock(ctx context.Context, m *Medication) error

	// List returns the inventory ordered by name.
	List(ctx context.Context) ([]*Medication, error)

	// ListBelowStock returns medications with stock under threshold, lowest first.
	ListBelowStock(ctx context.Context, threshold int) ([]*Medication, error)
}
