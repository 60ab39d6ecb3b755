package app

import (
	"fmt"

	"github.com/dkeye/CallRelay/internal/core"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickObserver
)

const (
	PolicyDrop = "drop"
	PolicyKick = "kick"
)

// Policy decides what happens to an observer that could not take a broadcast.
type Policy interface {
	OnBackPressure(observer core.ObserverConnection) BackpressureAction
}

// DropPolicy loses the frame for that observer and keeps it connected.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.ObserverConnection) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects observers that fall behind.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.ObserverConnection) BackpressureAction {
	return KickObserver
}

func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "", PolicyDrop:
		return DropPolicy{}, nil
	case PolicyKick:
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown slow observer policy %q", name)
	}
}
