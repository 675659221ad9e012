package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAppointmentScheduled EventType = "appointment.scheduled"
	EventAppointmentCancelled EventType = "appointment.cancelled"
	EventAppointmentCompleted EventType = "appointment.completed"
	EventPrescriptionCreated  EventType = "prescription.created"
	EventMedicationLowStock   EventType = "medication.low_stock"
	EventInvoiceGenerated     EventType = "invoice.generated"
	EventPaymentRecorded      EventType = "payment.recorded"
	EventInvoicePaid          EventType = "invoice.paid"
)

// Event is published after the transaction that produced it commits.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	ActorID     uuid.UUID `json:"actor_id"`
	Payload     any       `json:"payload"`
}

func NewEvent(t EventType, aggregateID, actorID uuid.UUID, payload any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		ActorID:     actorID,
		Payload:     payload,
	}
}
