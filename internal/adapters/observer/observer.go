package observer

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/CallRelay/internal/app"
	"github.com/dkeye/CallRelay/internal/core"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	SendBuffer   int
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

// Controller serves the /ui observer channel.
type Controller struct {
	Hub  *app.Hub
	opts Options
}

func NewController(hub *app.Hub, opts Options) *Controller {
	return &Controller{Hub: hub, opts: opts}
}

// WsObserverConn implements core.ObserverConnection over a websocket.
type WsObserverConn struct {
	id   domain.ObserverID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsObserverConn(ws *websocket.Conn, buffer int) *WsObserverConn {
	return &WsObserverConn{
		id:   domain.NewObserverID(),
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsObserverConn) ID() domain.ObserverID { return c.id }

func (c *WsObserverConn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *WsObserverConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsObserverConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleObserver(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "observer").Msg("ws upgrade")
		return
	}

	conn := newWsObserverConn(ws, ctl.opts.SendBuffer)
	log.Info().Str("module", "observer").Str("observer", string(conn.id)).Str("remote", c.Request.RemoteAddr).Msg("new observer connection")

	if err := ctl.Hub.Register(conn); err != nil {
		log.Error().Err(err).Str("module", "observer").Str("observer", string(conn.id)).Msg("send hello")
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}
