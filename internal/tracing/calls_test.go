package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dkeye/CallRelay/internal/domain"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, tp
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestCallSpans_Lifecycle(t *testing.T) {
	rec, tp := newRecorder()
	s := NewCallSpans(tp.Tracer(TracerName))

	s.Start(domain.Call{ID: "CA1", From: "+1555", To: "+1999", StartedAt: time.Now()})
	s.Frame("CA1")
	s.Frame("CA1")
	s.Frame("unknown")
	assert.Equal(t, 1, s.Active())

	s.End("CA1", "stop")
	s.End("CA1", "stop")
	assert.Equal(t, 0, s.Active())

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "call.session", ended[0].Name())

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "CA1", attrs["call.id"].AsString())
	assert.Equal(t, "+1555", attrs["call.from"].AsString())
	assert.Equal(t, int64(2), attrs["media.frames"].AsInt64())
	assert.Equal(t, "stop", attrs["call.end_reason"].AsString())
}

func TestCallSpans_RestartEndsPrevious(t *testing.T) {
	rec, tp := newRecorder()
	s := NewCallSpans(tp.Tracer(TracerName))

	s.Start(domain.Call{ID: "CA1", StartedAt: time.Now()})
	s.Start(domain.Call{ID: "CA1", StartedAt: time.Now()})

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "replaced", attrMap(ended[0].Attributes())["call.end_reason"].AsString())
	assert.Equal(t, 1, s.Active())
}

func TestSetup(t *testing.T) {
	tracer, shutdown, err := Setup(context.Background(), Config{Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	assert.NoError(t, shutdown(context.Background()))

	_, _, err = Setup(context.Background(), Config{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestNewCallSpansNilTracer(t *testing.T) {
	s := NewCallSpans(nil)
	s.Start(domain.Call{ID: "CA1"})
	s.End("CA1", "stop")
	assert.Equal(t, 0, s.Active())
}
