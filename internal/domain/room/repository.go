package room

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create returns ErrRoomNameTaken when the name is already used.
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// GetForUpdate loads the room and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)

	List(ctx context.Context) ([]*Room, error)
}
