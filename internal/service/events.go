package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
)

// EventPublisher delivers domain events after their transaction committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
