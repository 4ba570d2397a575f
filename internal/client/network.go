// Package client implements the Empire's Legacy network client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"empires-legacy/internal/protocol"
)

// ErrNotConnected is returned when a request is made without a connection.
var ErrNotConnected = errors.New("not connected")

// ServerError is an error reply from the server.
type ServerError struct {
	Code    protocol.ErrorCode
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NetworkClient handles WebSocket communication with the server. Replies
// are matched to requests by message id; everything else goes to
// OnMessage.
type NetworkClient struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	pending map[string]chan *protocol.Message
	done    chan struct{}
	log     zerolog.Logger

	// OnMessage receives unsolicited messages such as state broadcasts.
	OnMessage func(*protocol.Message)
	// OnDisconnect is called once when the connection drops.
	OnDisconnect func(error)

	welcome   chan *protocol.Message
	connected bool
}

// NewNetworkClient creates a new network client.
func NewNetworkClient(log zerolog.Logger) *NetworkClient {
	return &NetworkClient{
		pending: make(map[string]chan *protocol.Message),
		log:     log,
	}
}

// URL returns the WebSocket URL for a server address. Bare host:port
// addresses use ws://.
func URL(serverAddr string) string {
	addr := strings.TrimSuffix(serverAddr, "/")
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
	case strings.HasPrefix(addr, "http://"):
		addr = "ws://" + strings.TrimPrefix(addr, "http://")
	case strings.HasPrefix(addr, "https://"):
		addr = "wss://" + strings.TrimPrefix(addr, "https://")
	default:
		addr = "ws://" + addr
	}
	if !strings.HasSuffix(addr, "/ws") {
		addr += "/ws"
	}
	return addr
}

// Connect establishes a connection and waits for the server's welcome.
func (c *NetworkClient) Connect(ctx context.Context, serverAddr string) (*protocol.WelcomePayload, error) {
	url := URL(serverAddr)
	c.log.Debug().Str("url", url).Msg("Connecting")

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(1 << 20)

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.done = make(chan struct{})
	c.welcome = make(chan *protocol.Message, 1)
	c.mu.Unlock()

	go c.readPump(conn)
	go c.keepAlive(conn)

	select {
	case msg := <-c.welcome:
		var w protocol.WelcomePayload
		if err := msg.ParsePayload(&w); err != nil {
			c.Close()
			return nil, fmt.Errorf("decode welcome: %w", err)
		}
		c.log.Debug().Str("connection", w.ConnectionID).Str("server", w.Version).Msg("Connected")
		return &w, nil
	case <-ctx.Done():
		c.Close()
		return nil, ctx.Err()
	}
}

// Close closes the connection.
func (c *NetworkClient) Close() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	conn.Close(websocket.StatusNormalClosure, "")
}

// IsConnected returns true if connected to server.
func (c *NetworkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Request sends a message and waits for the reply with the same id. Error
// replies are returned as *ServerError.
func (c *NetworkClient) Request(ctx context.Context, msgType protocol.MessageType, payload interface{}) (*protocol.Message, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	reply := make(chan *protocol.Message, 1)
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn, done := c.conn, c.done
	c.pending[msg.ID] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return nil, fmt.Errorf("send %s: %w", msgType, err)
	}

	select {
	case resp := <-reply:
		if resp.Type == protocol.TypeError {
			var e protocol.ErrorPayload
			if err := resp.ParsePayload(&e); err != nil {
				return nil, fmt.Errorf("decode error reply: %w", err)
			}
			return nil, &ServerError{Code: e.Code, Message: e.Message}
		}
		return resp, nil
	case <-done:
		return nil, ErrNotConnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readPump reads messages from the WebSocket and routes them.
func (c *NetworkClient) readPump(conn *websocket.Conn) {
	var readErr error
	defer func() {
		c.mu.Lock()
		wasConnected := c.connected
		if wasConnected {
			c.connected = false
			close(c.done)
		}
		c.mu.Unlock()
		if wasConnected && c.OnDisconnect != nil {
			c.OnDisconnect(readErr)
		}
	}()

	for {
		msgType, data, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				readErr = err
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn().Err(err).Msg("Failed to unmarshal message")
			continue
		}
		c.route(&msg)
	}
}

func (c *NetworkClient) route(msg *protocol.Message) {
	c.mu.Lock()
	reply, ok := c.pending[msg.ID]
	welcome := c.welcome
	c.mu.Unlock()

	switch {
	case ok:
		reply <- msg
	case msg.Type == protocol.TypeWelcome:
		select {
		case welcome <- msg:
		default:
		}
	case c.OnMessage != nil:
		c.OnMessage(msg)
	}
}

// keepAlive pings the server so idle connections stay open.
func (c *NetworkClient) keepAlive(conn *websocket.Conn) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
