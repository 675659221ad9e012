package tracer

import (
	"context"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, config.TracingConfig{Enabled: false}, config.AppConfig{Environment: "test"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "op")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
