package protocol

import (
	"time"

	"github.com/dkeye/CallRelay/internal/domain"
)

// Observer-facing message types.
const (
	TypeHello     = "hello"
	TypeCallStart = "call-start"
	TypeLevel     = "level"
	TypeCallStop  = "call-stop"
	TypeError     = "error"
	TypePing      = "ping"
	TypePong      = "pong"
)

// Hello is sent once to every new observer.
type Hello struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
}

type CallStart struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
	From   string        `json:"from,omitempty"`
	To     string        `json:"to,omitempty"`
}

type Level struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
	RMS    float64       `json:"rms"`
}

type CallStop struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
}

// Error is only ever sent back to the connection that caused it.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Pong struct {
	Type string `json:"type"`
}

func NewHello(now time.Time) Hello {
	return Hello{Type: TypeHello, ServerTime: now.UnixMilli()}
}

func NewCallStart(c domain.Call) CallStart {
	return CallStart{Type: TypeCallStart, CallID: c.ID, From: c.From, To: c.To}
}

func NewLevel(id domain.CallID, rms float64) Level {
	return Level{Type: TypeLevel, CallID: id, RMS: rms}
}

func NewCallStop(id domain.CallID) CallStop {
	return CallStop{Type: TypeCallStop, CallID: id}
}

func NewInvalidJSONError() Error {
	return Error{Type: TypeError, Message: ErrInvalidJSON.Error()}
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}
