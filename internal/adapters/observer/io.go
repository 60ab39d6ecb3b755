package observer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/CallRelay/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsObserverConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "observer").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "observer").Str("observer", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Debug().Err(err).Str("module", "observer").Str("observer", string(c.id)).Msg("ping failed")
				return
			}
		}
	}
}

// readPump only watches for close; observers have nothing to say except ping.
func (ctl *Controller) readPump(ctx context.Context, c *WsObserverConn) {
	defer func() {
		ctl.Hub.Unregister(c.id)
		c.Close()
		log.Info().Str("module", "observer").Str("observer", string(c.id)).Msg("observer closed")
	}()
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "observer").Str("observer", string(c.id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleMessage(c, data)
	}
}

func (ctl *Controller) handleMessage(c *WsObserverConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}
	if env.Type != protocol.TypePing {
		return
	}
	b, err := json.Marshal(protocol.NewPong())
	if err != nil {
		log.Error().Err(err).Str("module", "observer").Msg("pong marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "observer").Str("observer", string(c.id)).Msg("pong not queued")
	}
}
