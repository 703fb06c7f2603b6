package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"globalinput/internal/frame"
	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/input/inputtest"
	"globalinput/internal/protocol"
	"globalinput/internal/provider"

	"github.com/gorilla/websocket"
)

type harness struct {
	app  *frame.App
	hook *inputtest.Hook
	ctrl *inputtest.Controller
	srv  *Server
	http *httptest.Server
}

type memoryStore struct {
	mu      sync.Mutex
	hotkeys map[string]string
}

func (s *memoryStore) SaveHotkey(name, sequence string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hotkeys == nil {
		s.hotkeys = make(map[string]string)
	}
	s.hotkeys[name] = sequence
	return nil
}

func (s *memoryStore) RemoveHotkey(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hotkeys, name)
	return nil
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	return newStoreHarness(t, token, nil)
}

func newStoreHarness(t *testing.T, token string, store HotkeyStore) *harness {
	t.Helper()
	h := &harness{
		app:  frame.New(),
		hook: &inputtest.Hook{},
		ctrl: &inputtest.Controller{Applied: make(chan struct{}, 16)},
		srv:  NewServer(token),
	}
	group := provider.Plugins(provider.Options{
		Hook:       h.hook,
		Locator:    &inputtest.Locator{Pos: input.Position{X: 8, Y: 9}},
		Controller: h.ctrl,
	})
	h.app.AddPlugin(group).AddPlugin(Plugin{Server: h.srv, Store: store})
	if err := h.app.Startup(); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	h.http = httptest.NewServer(h.srv.Handler())

	t.Cleanup(func() {
		h.http.Close()
		h.srv.Shutdown(context.Background())
		group.Close()
	})
	return h
}

func (h *harness) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.http.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuth(t *testing.T) {
	h := newHarness(t, "secret")

	if resp := h.do(t, http.MethodGet, "/health", "", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("Health should skip auth, got %d", resp.StatusCode)
	}
	if resp := h.do(t, http.MethodGet, "/api/status", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := h.do(t, http.MethodGet, "/api/status", "", "secret"); resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestStatusReflectsHost(t *testing.T) {
	h := newHarness(t, "")
	frame.Resource[hotkey.Registry](h.app).Add("grab", []input.Key{input.KeyLeftAlt, input.KeyG})
	h.app.Update()

	resp := h.do(t, http.MethodGet, "/api/status", "", "")
	var st protocol.StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !st.KeyboardHook || !st.MouseHook {
		t.Errorf("Expected both hooks up, got %+v", st)
	}
	if st.Position != (input.Position{X: 8, Y: 9}) {
		t.Errorf("Expected position (8,9), got %v", st.Position)
	}
	if st.Hotkeys["grab"] != "lalt+g" {
		t.Errorf("Unexpected hotkeys %v", st.Hotkeys)
	}
}

func TestHotkeyLifecycle(t *testing.T) {
	h := newHarness(t, "")
	registry := frame.Resource[hotkey.Registry](h.app)

	resp := h.do(t, http.MethodPost, "/api/hotkeys", `{"name":"save","sequence":"Ctrl+S"}`, "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	if registry.Len() != 0 {
		t.Error("Registry must only change on the tick goroutine")
	}
	h.app.Update()
	if keys, ok := registry.Sequence("save"); !ok || len(keys) != 2 {
		t.Fatalf("Expected 'save' to be registered, got %v", keys)
	}

	resp = h.do(t, http.MethodDelete, "/api/hotkeys?name=save", "", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	h.app.Update()
	if registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %v", registry.Names())
	}
}

func TestHotkeyChangesPersisted(t *testing.T) {
	store := &memoryStore{}
	h := newStoreHarness(t, "", store)

	h.do(t, http.MethodPost, "/api/hotkeys", `{"name":"save","sequence":"Ctrl+S"}`, "")
	h.app.Update()
	if got := store.hotkeys["save"]; got != "lctrl+s" {
		t.Errorf("Expected 'save' to be stored as lctrl+s, got %q", got)
	}
	if keys, err := hotkey.ParseSequence(store.hotkeys["save"]); err != nil || len(keys) != 2 {
		t.Errorf("Stored sequence should parse back, got %v, %v", keys, err)
	}

	h.do(t, http.MethodDelete, "/api/hotkeys?name=save", "", "")
	h.app.Update()
	if _, ok := store.hotkeys["save"]; ok {
		t.Error("Expected 'save' to be removed from the store")
	}
}

func TestHotkeyValidation(t *testing.T) {
	h := newHarness(t, "")

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/hotkeys", `{"name":"x","sequence":"Ctrl+Nope"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/hotkeys", `{"sequence":"Ctrl+S"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/hotkeys", `not json`, http.StatusBadRequest},
		{http.MethodDelete, "/api/hotkeys", "", http.StatusBadRequest},
		{http.MethodPut, "/api/hotkeys", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/mouse", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/mouse", `{"action":"click","button":"thumb"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if resp := h.do(t, tt.method, tt.path, tt.body, ""); resp.StatusCode != tt.want {
			t.Errorf("%s %s %s: expected %d, got %d", tt.method, tt.path, tt.body, tt.want, resp.StatusCode)
		}
	}
}

func TestMouseCommandApplied(t *testing.T) {
	h := newHarness(t, "")

	h.do(t, http.MethodPost, "/api/mouse", `{"action":"move_to","x":100,"y":200}`, "")
	h.do(t, http.MethodPost, "/api/mouse", `{"action":"click","button":"left"}`, "")
	h.app.Update()

	for i := 0; i < 2; i++ {
		select {
		case <-h.ctrl.Applied:
		case <-time.After(time.Second):
			t.Fatalf("Command %d was not applied", i)
		}
	}
	got := h.ctrl.Calls()
	if len(got) != 2 || got[0] != "move_to 100 200" || got[1] != "click left" {
		t.Errorf("Unexpected calls %v", got)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg protocol.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestWebSocket(t *testing.T) {
	h := newHarness(t, "tok")
	frame.Resource[hotkey.Registry](h.app).Add("toggle", []input.Key{input.KeyLeftControl, input.KeySpace})

	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws?token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	welcome := readMessage(t, conn)
	var wp protocol.WelcomePayload
	if welcome.Type != protocol.TypeWelcome || protocol.DecodePayload(welcome, &wp) != nil || len(wp.ClientID) != 36 {
		t.Fatalf("Unexpected welcome %+v", welcome)
	}

	// Hotkey broadcast
	h.hook.Press(input.KeyLeftControl, input.KeySpace)
	h.app.Update()
	msg := readMessage(t, conn)
	var hp protocol.HotkeyPayload
	if msg.Type != protocol.TypeHotkey || protocol.DecodePayload(msg, &hp) != nil || hp.Name != "toggle" {
		t.Fatalf("Unexpected hotkey message %+v", msg)
	}

	// Mouse control
	err = conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeMouse,
		Payload: protocol.MouseFromCommand(input.ScrollWheel{Direction: input.ScrollUp}),
	})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(h.ctrl.Calls()) == 0 && time.Now().Before(deadline) {
		h.app.Update()
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.ctrl.Calls(); len(got) != 1 || got[0] != "scroll up" {
		t.Errorf("Unexpected calls %v", got)
	}

	// Rejected message
	conn.WriteJSON(protocol.Message{Type: protocol.TypeMouse, Payload: protocol.MousePayload{Action: "warp"}})
	if msg := readMessage(t, conn); msg.Type != protocol.TypeError {
		t.Errorf("Expected error message, got %+v", msg)
	}

	// Status request
	conn.WriteJSON(protocol.Message{Type: protocol.TypeStatusRequest})
	msg = readMessage(t, conn)
	var st protocol.StatusPayload
	if msg.Type != protocol.TypeStatus || protocol.DecodePayload(msg, &st) != nil || st.Hotkeys["toggle"] == "" {
		t.Errorf("Unexpected status %+v", msg)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	h := newHarness(t, "tok")
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %v", resp)
	}
}
