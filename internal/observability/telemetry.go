package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "fnrelay/gateway"

const OutcomeOK = "ok"

// Telemetry records one span and two instruments per function call. It uses
// the global OTel providers, which are no-ops until configured.
type Telemetry struct {
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	now      func() time.Time
}

func NewTelemetry() (*Telemetry, error) {
	meter := otel.Meter(instrumentationName)
	calls, err := meter.Int64Counter("fnrelay.function.calls",
		metric.WithDescription("Function invocations by outcome."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("fnrelay.function.duration",
		metric.WithDescription("Function invocation latency."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Telemetry{
		tracer:   otel.Tracer(instrumentationName),
		calls:    calls,
		duration: duration,
		now:      time.Now,
	}, nil
}

// StartCall opens the span for one call. The returned func must be called
// once with the outcome code (OutcomeOK or an error code) and the error.
func (t *Telemetry) StartCall(ctx context.Context, function string) (context.Context, func(outcome string, err error)) {
	if t == nil {
		return ctx, func(string, error) {}
	}
	start := t.now()
	ctx, span := t.tracer.Start(ctx, "fnrelay.call "+function,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("fnrelay.function", function)))
	return ctx, func(outcome string, err error) {
		attrs := metric.WithAttributes(
			attribute.String("function", function),
			attribute.String("outcome", outcome),
		)
		t.calls.Add(ctx, 1, attrs)
		t.duration.Record(ctx, t.now().Sub(start).Seconds(), attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}
}
