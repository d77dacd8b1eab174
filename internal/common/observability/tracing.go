package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps the trace provider used for conversation turn spans.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracing sets up a Jaeger-backed tracer. An empty endpoint returns a
// no-op tracing handle so callers never need to nil-check.
func NewTracing(serviceName, collectorEndpoint string) (*Tracing, error) {
	if collectorEndpoint == "" {
		return &Tracing{tracer: otel.Tracer(serviceName)}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(collectorEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTracerProvider(provider)

	return &Tracing{
		provider: provider,
		tracer:   provider.Tracer(serviceName),
	}, nil
}

// StartTurnSpan opens a span covering one conversation turn.
func (t *Tracing) StartTurnSpan(ctx context.Context, sessionID, state string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "conversation.turn",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("conversation.state", state),
		),
	)
}

func (t *Tracing) Shutdown() {
	if t.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		t.provider.Shutdown(ctx)
	}
}
