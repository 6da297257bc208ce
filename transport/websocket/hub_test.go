package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/boop-game/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func testSnapshot(t *testing.T) *engine.Snapshot {
	t.Helper()
	eng := engine.NewEngineWithDefaults()
	if result := eng.PlacePiece(2, 3, engine.Kitten); !result.Success {
		t.Fatalf("placement failed: %s", result.Reason)
	}
	return eng.Snapshot()
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in session %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialised")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "abcd")

	hub.registerClient(client)
	if hub.ClientCount("abcd") != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount("abcd"))
	}

	hub.unregisterClient(client)
	if _, exists := hub.sessions["abcd"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")
	other := newTestClient(hub, "other")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	if hub.ClientCount("multi") != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount("multi"))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount("multi") != 1 {
		t.Errorf("Expected 1 client remaining, got %d", hub.ClientCount("multi"))
	}
	if !hub.sessions["multi"][client2] {
		t.Error("client2 should still be registered")
	}
	if hub.ClientCount("other") != 1 {
		t.Error("Unrelated session should be untouched")
	}
}

func TestHubBroadcastMessageScopedToSession(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "game")
	bystander := newTestClient(hub, "elsewhere")
	hub.registerClient(watcher)
	hub.registerClient(bystander)

	snap := testSnapshot(t)
	hub.broadcastMessage(&Message{SessionID: "game", GameState: snap, Event: EventStateUpdate})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || message.GameState.BoardText != snap.BoardText {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Fatal("Watcher received nothing")
	}

	select {
	case <-bystander.send:
		t.Error("Client in another session should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventStateUpdate})

	if hub.ClientCount("slow") != 0 {
		t.Error("Client with a full send buffer should be dropped")
	}
}

func TestHubBroadcastEventQueues(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", EventTurn, "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != EventTurn {
			t.Errorf("Expected event %s, got %s", EventTurn, message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No broadcast message queued")
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(t, hub)
	conn := dial(t, server, "ws01")
	waitForClients(t, hub, "ws01", 1)

	conn.Close()
	waitForClients(t, hub, "ws01", 0)
}

func TestWebSocketStateUpdate(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newTestServer(t, hub)
	conn := dial(t, server, "ws02")
	waitForClients(t, hub, "ws02", 1)

	snap := testSnapshot(t)
	hub.BroadcastToSession("ws02", snap)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "ws02" {
		t.Errorf("Expected sessionID 'ws02', got %s", message.SessionID)
	}
	if message.GameState == nil {
		t.Fatal("Expected a game state")
	}
	if message.GameState.CurrentPlayer != engine.PlayerTwo {
		t.Errorf("Expected PlayerTwo to move, got %v", message.GameState.CurrentPlayer)
	}
	if message.GameState.Board[2][3] == nil || message.GameState.Board[2][3].Type != engine.Kitten {
		t.Error("Placed kitten missing from transmitted board")
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := newTestServer(t, hub)
	conn := dial(t, server, "ws03")
	waitForClients(t, hub, "ws03", 1)

	hub.Stop()
	waitForClients(t, hub, "ws03", 0)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to close after Stop")
	}
}
