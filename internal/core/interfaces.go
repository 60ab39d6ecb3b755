package core

import (
	"errors"

	"github.com/dkeye/CallRelay/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Frame is a serialized outbound message.
type Frame []byte

// ObserverConnection abstracts a UI client transport.
// Owned by the adapter; the adapter must Close() it.
type ObserverConnection interface {
	ID() domain.ObserverID
	// IsOpen reports whether the connection still accepts frames.
	IsOpen() bool
	// TrySend queues f without blocking.
	TrySend(f Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Skipped int
	Dropped []ObserverConnection
}
