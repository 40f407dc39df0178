package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitTracerProviderLogsSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	recorder := tracetest.NewSpanRecorder()

	tp, err := InitTracerProvider(context.Background(), "snowcourse-test", zap.New(core), recorder)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := tp.Tracer(TracerName).Start(context.Background(), "station")
	span.SetAttributes(
		attribute.String("station.id", "05K08"),
		attribute.Int("rows", 12),
		attribute.Bool("no_data", false),
	)
	span.RecordError(errors.New("boom"))
	span.SetStatus(codes.Error, "boom")
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "station", recorder.Ended()[0].Name())

	entries := logs.FilterMessage("span finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "station", fields["span"])
	assert.Equal(t, "05K08", fields["station.id"])
	assert.Equal(t, int64(12), fields["rows"])
	assert.Equal(t, false, fields["no_data"])
	assert.Equal(t, "boom", fields["error"])
	assert.NotEmpty(t, fields["trace_id"])
}

func TestNoopTracerRecordsNothing(t *testing.T) {
	t.Parallel()

	_, span := NoopTracer().Start(context.Background(), "crawl")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.False(t, span.IsRecording())
}
