package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/CallRelay/internal/core"
	"github.com/dkeye/CallRelay/internal/domain"
)

// fakeObserver records frames instead of writing them to a socket.
type fakeObserver struct {
	id       domain.ObserverID
	mu       sync.Mutex
	open     bool
	capacity int
	frames   []core.Frame
	closed   bool
}

func newFakeObserver(id string) *fakeObserver {
	return &fakeObserver{id: domain.ObserverID(id), open: true, capacity: 1 << 10}
}

func (f *fakeObserver) ID() domain.ObserverID { return f.id }

func (f *fakeObserver) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open && !f.closed
}

func (f *fakeObserver) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrClosed
	}
	if len(f.frames) >= f.capacity {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeObserver) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeObserver) messages(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}
