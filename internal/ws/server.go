// Package ws is the transport boundary: it upgrades HTTP requests, keeps
// connections alive, and feeds inbound payloads to the coordinator one at a
// time per connection, preserving arrival order.
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"seastrike/internal/coordinator"
)

const maxMessageSize = 16 * 1024

type Server struct {
	coord      *coordinator.Coordinator
	upgrader   websocket.Upgrader
	heartbeat  time.Duration
	sendBuffer int
}

func NewServer(coord *coordinator.Coordinator, heartbeat time.Duration, sendBuffer int) *Server {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Server{
		coord:      coord,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		heartbeat:  heartbeat,
		sendBuffer: sendBuffer,
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn := newConn(sock, s.sendBuffer)
	log.Debug().Str("conn_id", conn.ID()).Str("remote", r.RemoteAddr).Msg("websocket connected")

	go conn.writeLoop(s.heartbeat)
	s.readLoop(conn)
}

// readLoop processes each inbound event to completion before reading the
// next, which is the per-connection ordering guarantee. It returns when the
// peer goes away, handing the identity to the presence grace window.
func (s *Server) readLoop(c *Conn) {
	defer func() {
		c.close()
		s.coord.HandleDisconnect(c)
		log.Debug().Str("conn_id", c.ID()).Msg("websocket disconnected")
	}()

	c.sock.SetReadLimit(maxMessageSize)
	pongWait := s.heartbeat * 2
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
		s.coord.Dispatch(c, data)
	}
}
