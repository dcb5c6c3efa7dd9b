package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the instrumentation name used when no tracer is set.
const DefaultTracerName = "hallocord/gateway"

func defaultTracer() trace.Tracer {
	return otel.Tracer(DefaultTracerName)
}

// startSpan starts a client span tagged with the connection id. Protocol
// work has no caller context, so spans are roots.
func (c *Connection) startSpan(name string, attrs ...attribute.KeyValue) trace.Span {
	attrs = append(attrs, attribute.String("gateway.connection_id", c.id.String()))
	_, span := c.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
