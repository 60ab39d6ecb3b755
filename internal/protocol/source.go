// Package protocol defines the wire messages of both WebSocket channels.
//
// Inbound frames on the media-source channel follow the Twilio Media Streams
// shape and are decoded into a closed set of SourceEvent variants before
// dispatch. Outbound messages to observers are plain JSON objects tagged by
// "type".
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJSON is returned by DecodeSourceEvent for frames that are not JSON.
var ErrInvalidJSON = errors.New("invalid-json")

// Media-source event names.
const (
	EventStart = "start"
	EventMedia = "media"
	EventStop  = "stop"
)

// SourceEvent is one decoded media-source frame.
// Implemented by StartEvent, MediaEvent, StopEvent and UnknownEvent.
type SourceEvent interface {
	EventName() string
}

// StartEvent opens a call on the connection.
type StartEvent struct {
	CallSid   string
	StreamSid string
	From      string
	To        string
}

// MediaEvent carries one chunk of base64 μ-law audio.
// Payload is empty for frames without audio.
type MediaEvent struct {
	Payload string
}

// StopEvent closes the call on the connection.
type StopEvent struct{}

// UnknownEvent is any frame whose discriminator is not recognized.
type UnknownEvent struct {
	Name string
}

func (StartEvent) EventName() string { return EventStart }
func (MediaEvent) EventName() string { return EventMedia }
func (StopEvent) EventName() string { return EventStop }
func (e UnknownEvent) EventName() string { return e.Name }

// HasPayload reports whether the frame carries audio.
func (e MediaEvent) HasPayload() bool { return e.Payload != "" }

// Audio returns the raw μ-law bytes of the payload.
func (e MediaEvent) Audio() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode media payload: %w", err)
	}
	return raw, nil
}

type sourceFrame struct {
	Event     string        `json:"event"`
	StreamSid string        `json:"streamSid,omitempty"`
	Start     *startPayload `json:"start,omitempty"`
	Media     *mediaPayload `json:"media,omitempty"`
}

type startPayload struct {
	CallSid   string `json:"callSid"`
	StreamSid string `json:"streamSid"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type mediaPayload struct {
	Track   string `json:"track,omitempty"`
	Payload string `json:"payload"`
}

// DecodeSourceEvent parses one text frame.
// Only syntactically invalid JSON is an error; well-formed frames with an
// unexpected shape decode to UnknownEvent.
func DecodeSourceEvent(data []byte) (SourceEvent, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	var f sourceFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return UnknownEvent{}, nil
	}

	switch f.Event {
	case EventStart:
		ev := StartEvent{StreamSid: f.StreamSid}
		if f.Start != nil {
			ev.CallSid = f.Start.CallSid
			ev.From = f.Start.From
			ev.To = f.Start.To
			if ev.StreamSid == "" {
				ev.StreamSid = f.Start.StreamSid
			}
		}
		return ev, nil
	case EventMedia:
		var ev MediaEvent
		if f.Media != nil {
			ev.Payload = f.Media.Payload
		}
		return ev, nil
	case EventStop:
		return StopEvent{}, nil
	default:
		return UnknownEvent{Name: f.Event}, nil
	}
}
