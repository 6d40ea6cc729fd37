package wsgateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/domain/relay"
)

// errSlowConsumer is reported when a client's send buffer is full. The
// connection is closed rather than letting one slow reader stall fan-out.
var errSlowConsumer = errors.New("send buffer full")

// Client is one WebSocket connection bound to an authenticated identity.
// It implements relay.Conn: the relay enqueues events into the send buffer
// and the write pump drains it onto the wire.
type Client struct {
	id       string
	identity string
	ws       *websocket.Conn
	send     chan relay.Event
	gateway  *Gateway
	log      zerolog.Logger

	closeOnce sync.Once
}

// ID implements relay.Conn.
func (c *Client) ID() string {
	return c.id
}

// Deliver implements relay.Conn. Never blocks: a full buffer closes the
// connection and surfaces an error to the relay.
func (c *Client) Deliver(ev relay.Event) error {
	select {
	case c.send <- ev:
		return nil
	default:
		c.close()
		return errSlowConsumer
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.ws.Close()
	})
}

// readPump consumes inbound frames and dispatches them until the connection
// drops. Runs as the connection's single reader goroutine; handlers for one
// connection therefore never interleave with each other.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.gateway.relay.Release(ctx, c)
		c.close()
	}()

	cfg := c.gateway.cfg
	c.ws.SetReadLimit(cfg.WSMaxMessageBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.WSPongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.WSPongTimeout))
	})

	for {
		var frame Frame
		if err := c.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}
		c.gateway.dispatch(ctx, c, frame)
	}
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	cfg := c.gateway.cfg
	pingPeriod := cfg.WSPongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WSWriteTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WSWriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
