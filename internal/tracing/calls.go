package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dkeye/CallRelay/internal/domain"
)

type callSpan struct {
	span   trace.Span
	frames int64
}

// CallSpans keeps the span of every active call, from start to stop.
type CallSpans struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[domain.CallID]*callSpan
}

// NewCallSpans falls back to a no-op tracer when tracer is nil.
func NewCallSpans(tracer trace.Tracer) *CallSpans {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	return &CallSpans{
		tracer: tracer,
		spans:  make(map[domain.CallID]*callSpan),
	}
}

// Start opens the span for c. A span left over from a previous start of the
// same id is ended as replaced.
func (s *CallSpans) Start(c domain.Call) {
	_, span := s.tracer.Start(context.Background(), "call.session",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithTimestamp(c.StartedAt),
		trace.WithAttributes(
			attribute.String("call.id", string(c.ID)),
			attribute.String("call.from", c.From),
			attribute.String("call.to", c.To),
		),
	)

	s.mu.Lock()
	old, ok := s.spans[c.ID]
	s.spans[c.ID] = &callSpan{span: span}
	s.mu.Unlock()

	if ok {
		endSpan(old, "replaced")
	}
}

// Frame counts one media frame for id.
func (s *CallSpans) Frame(id domain.CallID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.spans[id]; ok {
		cs.frames++
	}
}

// End closes the span for id with the given reason. Unknown ids are ignored.
func (s *CallSpans) End(id domain.CallID, reason string) {
	s.mu.Lock()
	cs, ok := s.spans[id]
	delete(s.spans, id)
	s.mu.Unlock()

	if ok {
		endSpan(cs, reason)
	}
}

func (s *CallSpans) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spans)
}

func endSpan(cs *callSpan, reason string) {
	cs.span.SetAttributes(
		attribute.Int64("media.frames", cs.frames),
		attribute.String("call.end_reason", reason),
	)
	cs.span.End()
}
