package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dkeye/CallRelay/internal/core"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/dkeye/CallRelay/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Hub is a threadsafe in-memory observer set.
// It never closes adapter-owned resources.
type Hub struct {
	mu        sync.RWMutex
	observers map[domain.ObserverID]core.ObserverConnection

	now func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		observers: make(map[domain.ObserverID]core.ObserverConnection),
		now:       time.Now,
	}
}

// Register adds o and queues the hello handshake for it. Hello is queued
// under the write lock so it precedes any broadcast to o.
func (h *Hub) Register(o core.ObserverConnection) error {
	b, err := json.Marshal(protocol.NewHello(h.now()))
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.observers[o.ID()] = o
	count := len(h.observers)
	err = o.TrySend(b)
	h.mu.Unlock()

	log.Info().Str("module", "app.hub").Str("observer", string(o.ID())).Int("observers", count).Msg("observer registered")
	return err
}

// Unregister is idempotent.
func (h *Hub) Unregister(id domain.ObserverID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[id]; !ok {
		return
	}
	delete(h.observers, id)
	log.Info().Str("module", "app.hub").Str("observer", string(id)).Int("observers", len(h.observers)).Msg("observer unregistered")
}

// Broadcast serializes v once and queues it for every open observer.
// Observers that are not open are skipped; observers whose queue is full
// miss this message and are reported in Dropped.
func (h *Hub) Broadcast(v any) core.PublishResult {
	res := core.PublishResult{}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("broadcast marshal")
		return res
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, o := range h.observers {
		if !o.IsOpen() {
			res.Skipped++
			continue
		}
		if err := o.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, o)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.hub").Int("sent_to", res.SendTo).Int("skipped", res.Skipped).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}
