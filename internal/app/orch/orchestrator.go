package orch

import (
	"github.com/dkeye/CallRelay/internal/app"
	"github.com/dkeye/CallRelay/internal/audio"
	"github.com/dkeye/CallRelay/internal/core"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/dkeye/CallRelay/internal/protocol"
	"github.com/dkeye/CallRelay/internal/tracing"
	"github.com/rs/zerolog/log"
)

// Orchestrator turns call lifecycle input into registry updates and
// observer broadcasts.
type Orchestrator struct {
	Calls  *app.CallRegistry
	Hub    *app.Hub
	Policy app.Policy
	Spans  *tracing.CallSpans
}

func New(calls *app.CallRegistry, hub *app.Hub, policy app.Policy, spans *tracing.CallSpans) *Orchestrator {
	if policy == nil {
		policy = app.DropPolicy{}
	}
	if spans == nil {
		spans = tracing.NewCallSpans(nil)
	}
	return &Orchestrator{Calls: calls, Hub: hub, Policy: policy, Spans: spans}
}

// Broadcast fans v out and applies the backpressure policy to observers
// that could not take it.
func (o *Orchestrator) Broadcast(v any) core.PublishResult {
	res := o.Hub.Broadcast(v)
	if o.Policy == nil {
		return res
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(slow) {
		case app.KickObserver:
			log.Warn().Str("module", "orch").Str("observer", string(slow.ID())).Msg("kicking slow observer")
			o.Hub.Unregister(slow.ID())
			slow.Close()
		case app.DropFrame:
		}
	}
	return res
}

// StartCall registers the call announced by a source connection.
func (o *Orchestrator) StartCall(owner string, ev protocol.StartEvent) domain.Call {
	call := o.Calls.OnStart(owner, ev.CallSid, ev.StreamSid, ev.From, ev.To)
	o.Spans.Start(call)
	o.Broadcast(protocol.NewCallStart(call))
	return call
}

// MediaLevel meters one μ-law chunk for id. Nothing is broadcast when the
// call is unknown or owner no longer holds it.
func (o *Orchestrator) MediaLevel(owner string, id domain.CallID, mulaw []byte) (float64, bool) {
	if id == "" {
		return 0, false
	}
	level, ok := o.Calls.OnMedia(owner, id, audio.DecodeMuLaw(mulaw))
	if !ok {
		log.Debug().Str("module", "orch").Str("call", string(id)).Str("owner", owner).Msg("media for unknown or foreign call")
		return 0, false
	}
	o.Spans.Frame(id)
	o.Broadcast(protocol.NewLevel(id, level))
	return level, true
}

// StopCall announces the end of id and removes it. Returns false when the
// call is unknown or owner no longer holds it.
func (o *Orchestrator) StopCall(owner string, id domain.CallID) bool {
	if id == "" {
		return false
	}
	if _, ok := o.Calls.OnStop(owner, id); !ok {
		log.Debug().Str("module", "orch").Str("call", string(id)).Str("owner", owner).Msg("stop for unknown or foreign call")
		return false
	}
	o.Spans.End(id, "stop")
	o.Broadcast(protocol.NewCallStop(id))
	return true
}

// SourceClosed ends a call whose source went away without a stop frame.
// Returns false when the call was already gone or taken over elsewhere.
func (o *Orchestrator) SourceClosed(owner string, id domain.CallID) bool {
	if id == "" {
		return false
	}
	if _, ok := o.Calls.OnConnectionClosed(owner, id); !ok {
		return false
	}
	o.Spans.End(id, "connection_closed")
	o.Broadcast(protocol.NewCallStop(id))
	return true
}
