package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "run")
	SetError(span, errors.New("node failed"), attribute.String("node_id", "n1"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "node failed", got.Status().Description)

	require.Len(t, got.Events(), 1)

	event := got.Events()[0]
	assert.Equal(t, "exception", event.Name)
	assert.Contains(t, event.Attributes, attribute.String("node_id", "n1"))
}
