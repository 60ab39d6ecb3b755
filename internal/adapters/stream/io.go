package stream

import (
	"context"

	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/dkeye/CallRelay/internal/protocol"
	"github.com/gorilla/websocket"
)

func (ctl *Controller) readPump(ctx context.Context, sc *sourceConn) {
	stop := context.AfterFunc(ctx, sc.Close)
	defer func() {
		stop()
		sc.Close()
		ctl.onClose(sc)
	}()

	for {
		_, data, err := sc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sc.logger.Warn().Err(err).Msg("readPump read error")
			}
			return
		}
		ctl.handleFrame(sc, data)
	}
}

func (ctl *Controller) handleFrame(sc *sourceConn, data []byte) {
	ev, err := protocol.DecodeSourceEvent(data)
	if err != nil {
		sc.logger.Warn().Err(err).Int("bytes", len(data)).Msg("bad frame")
		sc.reply(protocol.NewInvalidJSONError(), ctl.opts.WriteTimeout)
		return
	}

	switch e := ev.(type) {
	case protocol.StartEvent:
		ctl.handleStart(sc, e)
	case protocol.MediaEvent:
		ctl.handleMedia(sc, e)
	case protocol.StopEvent:
		ctl.handleStop(sc)
	default:
		sc.logger.Debug().Str("event", ev.EventName()).Msg("ignoring unknown event")
	}
}

func (ctl *Controller) handleStart(sc *sourceConn, e protocol.StartEvent) {
	// A start for a different call ends the one this connection announced.
	// The same id again just overwrites the session.
	if sc.callID != "" {
		if id, ok := domain.ResolveCallID(e.CallSid, e.StreamSid); !ok || id != sc.callID {
			ctl.Orch.SourceClosed(sc.id, sc.callID)
		}
	}
	call := ctl.Orch.StartCall(sc.id, e)
	sc.callID = call.ID
	sc.logger.Info().Str("call", string(call.ID)).Str("from", call.From).Str("to", call.To).Msg("start")
}

func (ctl *Controller) handleMedia(sc *sourceConn, e protocol.MediaEvent) {
	if !e.HasPayload() {
		return
	}
	raw, err := e.Audio()
	if err != nil {
		sc.logger.Warn().Err(err).Str("call", string(sc.callID)).Msg("bad media payload")
		return
	}
	ctl.Orch.MediaLevel(sc.id, sc.callID, raw)
}

func (ctl *Controller) handleStop(sc *sourceConn) {
	if sc.callID == "" {
		sc.logger.Debug().Msg("stop without start")
		return
	}
	if ctl.Orch.StopCall(sc.id, sc.callID) {
		sc.logger.Info().Str("call", string(sc.callID)).Msg("stop")
	} else {
		sc.logger.Info().Str("call", string(sc.callID)).Msg("stop ignored, call ended or taken over")
	}
	sc.callID = ""
}

func (ctl *Controller) onClose(sc *sourceConn) {
	if sc.callID != "" && ctl.Orch.SourceClosed(sc.id, sc.callID) {
		sc.logger.Info().Str("call", string(sc.callID)).Msg("call ended by source close")
	}
	sc.logger.Info().Msg("media-source connection closed")
}
