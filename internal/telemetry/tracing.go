// Package telemetry provides OpenTelemetry tracing for crawl runs.
//
// Spans are not exported to a collector. Each finished span is written to the
// zap logger at debug level, which is enough to see where a run spent its time.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// TracerName identifies spans created by the crawler.
const TracerName = "github.com/JakeFAU/snowcourse-crawler"

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(TracerName)
}

// InitTracerProvider builds a tracer provider that logs finished spans through
// logger, and installs it as the global provider. Extra processors (for example
// a tracetest.SpanRecorder) receive every span as well.
func InitTracerProvider(ctx context.Context, serviceName string, logger *zap.Logger, extra ...sdktrace.SpanProcessor) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(newLogProcessor(logger)),
	}
	for _, p := range extra {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

// logProcessor writes ended spans to a zap logger.
type logProcessor struct {
	logger *zap.Logger
}

func newLogProcessor(logger *zap.Logger) *logProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logProcessor{logger: logger.Named("trace")}
}

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := make([]zap.Field, 0, len(s.Attributes())+4)
	fields = append(fields,
		zap.String("trace_id", s.SpanContext().TraceID().String()),
		zap.String("span", s.Name()),
		zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
	)
	if st := s.Status(); st.Code == codes.Error {
		fields = append(fields, zap.String("error", st.Description))
	}
	for _, kv := range s.Attributes() {
		fields = append(fields, attributeField(kv))
	}
	p.logger.Debug("span finished", fields...)
}

func (p *logProcessor) Shutdown(context.Context) error { return nil }

func (p *logProcessor) ForceFlush(context.Context) error { return nil }

func attributeField(kv attribute.KeyValue) zap.Field {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.BOOL:
		return zap.Bool(key, kv.Value.AsBool())
	case attribute.INT64:
		return zap.Int64(key, kv.Value.AsInt64())
	case attribute.FLOAT64:
		return zap.Float64(key, kv.Value.AsFloat64())
	default:
		return zap.String(key, kv.Value.Emit())
	}
}
