// Package api provides an optional HTTP and WebSocket surface for remote
// hotkey management and pointer control.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/protocol"
	"globalinput/internal/queue"

	"go.uber.org/zap"
)

// Server provides HTTP API for remote control. Handlers never touch host
// state directly: they queue requests that the Plugin applies on the tick
// goroutine, and they read the snapshot the Plugin publishes.
type Server struct {
	token    string
	requests *queue.Queue[request]
	wsMgr    *WSManager
	hubOnce  sync.Once

	statusMu sync.RWMutex
	status   protocol.StatusPayload

	httpMu     sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new API server. An empty token disables auth.
func NewServer(token string) *Server {
	s := &Server{
		token:    token,
		requests: queue.New[request](),
		status:   protocol.StatusPayload{Hotkeys: map[string]string{}},
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Handler returns the HTTP handler with middleware applied and starts the
// WebSocket hub.
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() { go s.wsMgr.start() })

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/hotkeys", s.handleHotkeys)
	mux.HandleFunc("/api/mouse", s.handleMouse)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)

	return s.authMiddleware(s.recoverMiddleware(mux))
}

// Start listens on the given port and serves until Shutdown. It blocks.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("API server failed to listen", zap.String("component", "api"),
			zap.String("addr", addr), zap.Error(err))
		return err
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpMu.Lock()
	s.httpServer = server
	s.httpMu.Unlock()

	logger.Info("Starting API server", zap.String("component", "api"), zap.String("addr", addr))
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("API server stopped", zap.String("component", "api"), zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects every WebSocket client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsMgr.stop()
	s.requests.Close()

	s.httpMu.Lock()
	server := s.httpServer
	s.httpMu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// BroadcastHotkey notifies every WebSocket client that a hotkey fired.
func (s *Server) BroadcastHotkey(name string) {
	s.wsMgr.Broadcast(protocol.Message{
		Type:    protocol.TypeHotkey,
		Payload: protocol.HotkeyPayload{Name: name},
	})
}

// Status returns the last published snapshot.
func (s *Server) Status() protocol.StatusPayload {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Server) setStatus(st protocol.StatusPayload) {
	s.statusMu.Lock()
	s.status = st
	s.statusMu.Unlock()
}

func (s *Server) enqueue(r request) bool {
	return s.requests.Send(r)
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Recovered panic in API handler", zap.String("component", "api"),
					zap.Any("panic", err), zap.String("path", r.URL.Path))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("API request", zap.String("component", "api"), zap.String("method", r.Method),
			zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))

		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			authorized := r.Header.Get("Authorization") == "Bearer "+s.token
			// Browsers cannot set headers on a WebSocket handshake
			if !authorized && r.URL.Path == "/ws" {
				authorized = r.URL.Query().Get("token") == s.token
			}
			if !authorized {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

type hotkeyRequest struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence"`
}

// handleHotkeys handles GET, POST and DELETE /api/hotkeys
func (s *Server) handleHotkeys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Status().Hotkeys)

	case http.MethodPost:
		var req hotkeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid hotkey data", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "Missing hotkey name", http.StatusBadRequest)
			return
		}
		keys, err := hotkey.ParseSequence(req.Sequence)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !s.enqueue(addHotkey{name: req.Name, keys: keys}) {
			http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
			return
		}
		logger.Info("Queued remote hotkey registration", zap.String("component", "api"),
			zap.String("name", req.Name), zap.String("sequence", hotkey.FormatSequence(keys)))
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "name": req.Name})

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Missing name parameter", http.StatusBadRequest)
			return
		}
		if !s.enqueue(removeHotkey{name: name}) {
			http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "name": name})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMouse handles POST /api/mouse
func (s *Server) handleMouse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload protocol.MousePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid mouse command", http.StatusBadRequest)
		return
	}
	cmd, err := payload.Command()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.enqueue(mouseCommand{cmd: cmd}) {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", zap.String("component", "api"), zap.Error(err))
	}
}

// queueMouse is used by the WebSocket read pump.
func (s *Server) queueMouse(cmd input.MouseControl) bool {
	return s.enqueue(mouseCommand{cmd: cmd})
}
