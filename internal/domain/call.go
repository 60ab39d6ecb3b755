// Package domain contains entity without logic, just meta-data
package domain

import (
	"math/rand"
	"strconv"
	"time"
)

const GeneratedCallIDPrefix = "call-"

type CallID string

// Call is one monitored phone call.
// From and To are set once on start and never change.
type Call struct {
	ID        CallID    `json:"callId"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Level     float64   `json:"level"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResolveCallID picks the upstream call sid, then the stream sid.
// Returns false when neither is present.
func ResolveCallID(callSid, streamSid string) (CallID, bool) {
	if callSid != "" {
		return CallID(callSid), true
	}
	if streamSid != "" {
		return CallID(streamSid), true
	}
	return "", false
}

// NewCallID returns a display-only correlation token of the form call-<token>.
// math/rand is used on purpose: the token is not a secret.
func NewCallID() CallID {
	token := strconv.FormatUint(rand.Uint64(), 36)
	return CallID(GeneratedCallIDPrefix + token)
}
