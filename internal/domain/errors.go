package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrEmailTaken   = errors.New("a user with this email already exists")
)

// NotFoundError reports a dangling reference.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func NewNotFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidStateError reports an illegal status transition.
type InvalidStateError struct {
	Resource string
	ID       uuid.UUID
	From     string
	To       string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Resource, e.ID, e.From, e.To)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
