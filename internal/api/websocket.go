package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"globalinput/internal/logger"
	"globalinput/internal/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
	broadcastQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server only listens on loopback
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.Mutex
	broadcast  chan protocol.Message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	shutdown   chan struct{}
	stopOnce   sync.Once
}

// WebSocketClient represents a connected remote controller
type WebSocketClient struct {
	id      string
	manager *WSManager
	conn    *websocket.Conn
	ip      string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan protocol.Message, broadcastQueue),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.clientsMu.Unlock()
			logger.Info("WebSocket client registered", zap.String("component", "api"),
				zap.String("client", client.id), zap.String("remote", client.ip), zap.Int("total", total))

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				client.close()
			}
			total := len(m.clients)
			m.clientsMu.Unlock()
			logger.Info("WebSocket client unregistered", zap.String("component", "api"),
				zap.String("client", client.id), zap.Int("total", total))

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			m.clientsMu.Lock()
			for client := range m.clients {
				client.close()
				delete(m.clients, client)
			}
			m.clientsMu.Unlock()
			return
		}
	}
}

func (m *WSManager) stop() {
	m.stopOnce.Do(func() { close(m.shutdown) })
}

// Broadcast queues msg for every client. It never blocks; when the hub is
// behind the message is dropped.
func (m *WSManager) Broadcast(msg protocol.Message) {
	select {
	case m.broadcast <- msg:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping message", zap.String("component", "api"),
			zap.String("type", string(msg.Type)))
	}
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal broadcast message", zap.String("component", "api"), zap.Error(err))
		return
	}

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	for client := range m.clients {
		if !client.enqueue(jsonMsg) {
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade WebSocket connection", zap.String("component", "api"), zap.Error(err))
		return
	}

	client := &WebSocketClient{
		id:      uuid.NewString(),
		manager: m,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		ip:      r.RemoteAddr,
	}

	select {
	case m.register <- client:
	case <-m.shutdown:
		conn.Close()
		return
	}

	client.sendMessage(protocol.Message{
		Type:    protocol.TypeWelcome,
		Payload: protocol.WelcomePayload{ClientID: client.id},
	})

	go client.writePump()
	go client.readPump()
}

// enqueue hands data to the write pump. A client whose buffer is full is
// closed and enqueue reports false.
func (c *WebSocketClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.closed = true
		close(c.send)
		return false
	}
}

func (c *WebSocketClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *WebSocketClient) sendMessage(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal message", zap.String("component", "api"), zap.Error(err))
		return
	}
	c.enqueue(data)
}

func (c *WebSocketClient) sendError(text string) {
	c.sendMessage(protocol.Message{Type: protocol.TypeError, Payload: protocol.ErrorPayload{Message: text}})
}

// readPump pumps messages from the websocket connection to the server.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("WebSocket read error", zap.String("component", "api"),
					zap.String("client", c.id), zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *WebSocketClient) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case protocol.TypeMouse:
		var payload protocol.MousePayload
		if err := protocol.DecodePayload(msg, &payload); err != nil {
			c.sendError(err.Error())
			return
		}
		cmd, err := payload.Command()
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.manager.server.queueMouse(cmd)

	case protocol.TypeStatusRequest:
		c.sendMessage(protocol.Message{Type: protocol.TypeStatus, Payload: c.manager.server.Status()})

	default:
		c.sendError("unsupported message type " + string(msg.Type))
	}
}
