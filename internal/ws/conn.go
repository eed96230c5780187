package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Conn is the connection handle bound into the presence directory: a
// websocket plus a buffered outbound queue drained by a single writer
// goroutine. Send never blocks; when the queue is full the event is
// dropped, matching the coordinator's fire-and-forget contract.
type Conn struct {
	id   string
	sock *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func newConn(sock *websocket.Conn, buffer int) *Conn {
	if buffer <= 0 {
		buffer = 32
	}
	return &Conn{
		id:   uuid.NewString(),
		sock: sock,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("outbound event not marshalable")
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		log.Warn().Str("conn_id", c.id).Msg("outbound queue full, event dropped")
	}
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

// writeLoop owns all writes to the socket, including heartbeat pings. A
// client that stops answering pings is reaped by the read deadline in the
// read loop.
func (c *Conn) writeLoop(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
