package appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrAppointmentConflict = errors.New("appointment time slot is already booked")
	ErrInvalidTimeRange    = errors.New("start time must be before end time")
)

// ConflictError names the resource that is already booked and the interval
// of the appointment holding it.
type ConflictError struct {
	Resource      string // "doctor" or "room"
	ResourceID    uuid.UUID
	AppointmentID uuid.UUID
	Slot          Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already booked on %s (appointment %s)",
		e.Resource, e.ResourceID, e.Slot, e.AppointmentID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrAppointmentConflict
}
