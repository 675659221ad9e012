// Package service holds the clinic workflows. Every operation runs inside a
// single store transaction; audit entries and domain events are emitted only
// after that transaction committed.
package service

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("clinicflow/service")

// Deps carries the collaborators every workflow service shares.
type Deps struct {
	Store   store.Store
	Audit   *AuditService
	Events  EventPublisher
	Metrics *metrics.Collector
	Log     *zap.Logger
}

type base struct {
	store   store.Store
	audit   *AuditService
	events  EventPublisher
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func newBase(d Deps) base {
	events := d.Events
	if events == nil {
		events = NoopPublisher{}
	}
	return base{
		store:   d.Store,
		audit:   d.Audit,
		events:  events,
		metrics: d.Metrics,
		log:     d.Log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// publish hands events to the publisher. Failures are logged and counted but
// never undo the committed operation.
func (b *base) publish(ctx context.Context, evs ...domain.Event) {
	for _, ev := range evs {
		result := "ok"
		if err := b.events.Publish(ctx, ev); err != nil {
			result = "error"
			b.log.Warn("publishing event failed",
				zap.String("event_type", string(ev.Type)),
				zap.String("aggregate_id", ev.AggregateID.String()),
				zap.Error(err),
			)
		}
		b.metrics.EventsPublished.WithLabelValues(string(ev.Type), result).Inc()
	}
}

func (b *base) record(ctx context.Context, entry AuditEntry) {
	if b.audit != nil {
		b.audit.LogAsync(ctx, entry)
	}
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// endSpan marks the span failed when err is set and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
