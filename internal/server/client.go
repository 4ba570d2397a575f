package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
	sendBuffer     = 256
)

// Client represents a connected WebSocket client.
type Client struct {
	ID string

	server  *Server
	conn    *websocket.Conn
	send    chan *protocol.Message
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	gameID string
	seat   *game.PlayerID
}

// NewClient creates a new client. Each client may send msgRate messages
// per second with bursts of up to burst.
func NewClient(s *Server, conn *websocket.Conn, msgRate float64, burst int) *Client {
	id := uuid.New().String()
	return &Client{
		ID:      id,
		server:  s,
		conn:    conn,
		send:    make(chan *protocol.Message, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(msgRate), burst),
		log:     s.log.With().Str("client", id).Logger(),
	}
}

// Send queues a message. It returns false if the client is gone or its
// buffer is full.
func (c *Client) Send(msg *protocol.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Game returns the game the client follows and its seat, if bound.
func (c *Client) Game() (string, *game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.seat
}

func (c *Client) setGame(gameID string, seat *game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
	c.seat = seat
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads messages from the WebSocket and handles them in order.
func (c *Client) ReadPump() {
	defer func() {
		c.server.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("WebSocket error")
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug().Err(err).Msg("Invalid message")
			c.server.sendError(c, nil, protocol.ErrCodeMalformedMessage, "message is not valid JSON")
			continue
		}
		if !c.limiter.Allow() {
			c.server.sendError(c, &msg, protocol.ErrCodeRateLimited, "too many messages")
			continue
		}

		c.server.handle(c, &msg)
	}
}

// WritePump writes queued messages to the WebSocket and keeps it alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
