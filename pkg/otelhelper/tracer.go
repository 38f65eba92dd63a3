// Package otelhelper provides distributed tracing bootstrap for run
// monitoring.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Common attribute keys.
	WorkflowIDKey   = "graphflow.workflow.id"
	WorkflowNameKey = "graphflow.workflow.name"
	RunIDKey        = "graphflow.run.id"
	TriggerKindKey  = "graphflow.run.trigger"
	DryRunKey       = "graphflow.run.dry_run"
	NodeIDKey       = "graphflow.node.id"
	NodeKindKey     = "graphflow.node.kind"
	EventIDKey      = "graphflow.event.id"
	EventTypeKey    = "graphflow.event.type"
)

// Setup installs a global tracer provider exporting over OTLP/HTTP and
// returns a tracer for the service.
//
//nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func Setup(ctx context.Context, serviceName string) (trace.Tracer, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return tp.Tracer(serviceName), nil
}
