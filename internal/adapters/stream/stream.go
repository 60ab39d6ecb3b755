// Package stream serves the /call-stream media-source channel.
//
// Each connection is read by a single goroutine, so frames of one call are
// handled in arrival order. Replies (only invalid-json errors) are written
// from that same goroutine.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/CallRelay/internal/app/orch"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ReadLimit    int64
	WriteTimeout time.Duration
}

// Controller drives the orchestrator from media-source connections.
type Controller struct {
	Orch *orch.Orchestrator
	opts Options
}

func NewController(o *orch.Orchestrator, opts Options) *Controller {
	return &Controller{Orch: o, opts: opts}
}

// sourceConn is one media-source connection and the call it announced.
type sourceConn struct {
	id     string
	conn   *websocket.Conn
	callID domain.CallID
	logger zerolog.Logger

	closeOnce sync.Once
}

func (s *sourceConn) Close() {
	s.closeOnce.Do(func() { _ = s.conn.Close() })
}

func (s *sourceConn) reply(v any, timeout time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("reply marshal")
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(timeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.logger.Warn().Err(err).Msg("reply write error")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleStream(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "stream").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	id := ulid.Make().String()
	sc := &sourceConn{
		id:     id,
		conn:   ws,
		logger: log.With().Str("module", "stream").Str("conn", id).Logger(),
	}
	sc.logger.Info().Str("remote", c.Request.RemoteAddr).Msg("new media-source connection")

	go ctl.readPump(ctx, sc)
}
