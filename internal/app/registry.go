package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/CallRelay/internal/audio"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/rs/zerolog/log"
)

type callEntry struct {
	Call  domain.Call
	Owner string
}

// CallRegistry is the in-memory set of active calls.
// At most one entry exists per call id; a repeated start overwrites it.
type CallRegistry struct {
	mu    sync.RWMutex
	calls map[domain.CallID]*callEntry

	now   func() time.Time
	newID func() domain.CallID
}

func NewCallRegistry() *CallRegistry {
	return &CallRegistry{
		calls: make(map[domain.CallID]*callEntry),
		now:   time.Now,
		newID: domain.NewCallID,
	}
}

// OnStart resolves the effective call id and (re)creates the session.
// owner identifies the source connection so a later close only ends
// calls it still owns.
func (r *CallRegistry) OnStart(owner, callSid, streamSid, from, to string) domain.Call {
	id, ok := domain.ResolveCallID(callSid, streamSid)
	if !ok {
		id = r.newID()
	}
	now := r.now()
	call := domain.Call{
		ID:        id,
		From:      from,
		To:        to,
		StartedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	_, replaced := r.calls[id]
	r.calls[id] = &callEntry{Call: call, Owner: owner}
	r.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("call", string(id)).Str("owner", owner).Bool("replaced", replaced).Msg("call started")
	return call
}

// OnMedia stores the level of samples for id and returns it.
// ok is false when the call is unknown or owned by another connection.
func (r *CallRegistry) OnMedia(owner string, id domain.CallID, samples []int16) (level float64, ok bool) {
	level = audio.Level(samples)

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.calls[id]
	if !ok || e.Owner != owner {
		return 0, false
	}
	e.Call.Level = level
	e.Call.UpdatedAt = r.now()
	return level, true
}

// OnStop removes the call if owner still owns it.
func (r *CallRegistry) OnStop(owner string, id domain.CallID) (domain.Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.calls[id]
	if !ok || e.Owner != owner {
		return domain.Call{}, false
	}
	delete(r.calls, id)
	log.Info().Str("module", "app.registry").Str("call", string(id)).Msg("call stopped")
	return e.Call, true
}

// OnConnectionClosed ends a call whose source dropped without a stop frame.
// Calls taken over by another connection are left alone.
func (r *CallRegistry) OnConnectionClosed(owner string, id domain.CallID) (domain.Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.calls[id]
	if !ok || e.Owner != owner {
		return domain.Call{}, false
	}
	delete(r.calls, id)
	log.Info().Str("module", "app.registry").Str("call", string(id)).Str("owner", owner).Msg("call ended by connection close")
	return e.Call, true
}

func (r *CallRegistry) Get(id domain.CallID) (domain.Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.calls[id]; ok {
		return e.Call, true
	}
	return domain.Call{}, false
}

// Snapshot returns all active calls ordered by start time.
func (r *CallRegistry) Snapshot() []domain.Call {
	r.mu.RLock()
	out := make([]domain.Call, 0, len(r.calls))
	for _, e := range r.calls {
		out = append(out, e.Call)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Call) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

func (r *CallRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}
