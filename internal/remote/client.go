// Package remote is a WebSocket client for another globalinput host: it
// receives hotkey notifications and sends pointer commands.
package remote

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultRetryDelay is the pause between reconnection attempts.
const DefaultRetryDelay = 5 * time.Second

// Client handles the WebSocket connection to a host
type Client struct {
	hostAddr   string
	token      string
	retryDelay time.Duration
	send       chan protocol.Message
	done       chan struct{}
	closeOnce  sync.Once

	// Callbacks, called from the read goroutine. Set them before Start.
	OnHotkey func(name string)
	OnStatus func(status protocol.StatusPayload)
	OnError  func(message string)

	mu          sync.Mutex
	isConnected bool
	clientID    string
}

// NewClient creates a new WebSocket client for hostAddr ("host:port").
func NewClient(hostAddr, token string) *Client {
	return &Client{
		hostAddr:   hostAddr,
		token:      token,
		retryDelay: DefaultRetryDelay,
		send:       make(chan protocol.Message, 100),
		done:       make(chan struct{}),
	}
}

// Start begins the client loop (connect & process)
func (c *Client) Start() {
	go c.loop()
}

func (c *Client) loop() {
	for {
		c.connect()

		// If connect returns, it means we disconnected. Wait a bit and retry.
		select {
		case <-c.done:
			return
		case <-time.After(c.retryDelay):
			logger.Debug("Reconnecting to host", zap.String("component", "remote"), zap.String("host", c.hostAddr))
		}
	}
}

func (c *Client) connect() {
	u := url.URL{Scheme: "ws", Host: c.hostAddr, Path: "/ws"}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		logger.Warn("Connection to host failed", zap.String("component", "remote"),
			zap.String("url", u.String()), zap.Error(err))
		return
	}
	defer conn.Close()

	c.mu.Lock()
	c.isConnected = true
	c.mu.Unlock()
	logger.Info("Connected to host", zap.String("component", "remote"), zap.String("host", c.hostAddr))

	connDone := make(chan struct{})
	stopWrite := make(chan struct{})
	go func() {
		defer close(connDone)
		c.writePump(conn, stopWrite)
	}()
	go func() {
		// Unblocks readPump on Close
		select {
		case <-c.done:
			conn.Close()
		case <-stopWrite:
		}
	}()

	c.readPump(conn)

	c.mu.Lock()
	c.isConnected = false
	c.clientID = ""
	c.mu.Unlock()

	close(stopWrite)
	<-connDone
}

func (c *Client) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Read error", zap.String("component", "remote"), zap.Error(err))
			}
			return
		}
		// Server pings keep the connection alive; any frame extends the deadline
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Invalid message from host", zap.String("component", "remote"), zap.Error(err))
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("Write error", zap.String("component", "remote"), zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleMessage(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeWelcome:
		var payload protocol.WelcomePayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			return
		}
		c.mu.Lock()
		c.clientID = payload.ClientID
		c.mu.Unlock()

	case protocol.TypeHotkey:
		var payload protocol.HotkeyPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			return
		}
		if c.OnHotkey != nil {
			c.OnHotkey(payload.Name)
		}

	case protocol.TypeStatus:
		var payload protocol.StatusPayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			return
		}
		if c.OnStatus != nil {
			c.OnStatus(payload)
		}

	case protocol.TypeError:
		var payload protocol.ErrorPayload
		protocol.DecodePayload(msg, &payload)
		logger.Warn("Host rejected a message", zap.String("component", "remote"), zap.String("error", payload.Message))
		if c.OnError != nil {
			c.OnError(payload.Message)
		}
	}
}

func (c *Client) enqueue(msg protocol.Message) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

// SendMouse asks the host to apply cmd.
func (c *Client) SendMouse(cmd input.MouseControl) bool {
	return c.enqueue(protocol.Message{Type: protocol.TypeMouse, Payload: protocol.MouseFromCommand(cmd)})
}

// RequestStatus asks the host for a status snapshot, delivered to OnStatus.
func (c *Client) RequestStatus() bool {
	return c.enqueue(protocol.Message{Type: protocol.TypeStatusRequest})
}

// IsConnected returns true if client is connected to host
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// ClientID returns the id the host assigned to this connection, or "".
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Close stops the client
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
