package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/boop-game/game/config"
	"github.com/wricardo/boop-game/game/engine"
	"github.com/wricardo/boop-game/game/service"
	"github.com/wricardo/boop-game/game/session"
	"github.com/wricardo/boop-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	SelectPieceFunc func(ctx context.Context, sessionID string, player engine.Player, pieceType engine.PieceType) (*service.SelectResult, error)
	PlaceFunc       func(ctx context.Context, sessionID string, row, col int, pieceType engine.PieceType) (*service.PlaceResult, error)
	ResetFunc       func(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func freshSnapshot() *engine.Snapshot {
	return engine.NewEngineWithDefaults().Snapshot()
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) SelectPiece(ctx context.Context, sessionID string, player engine.Player, pieceType engine.PieceType) (*service.SelectResult, error) {
	if m.SelectPieceFunc != nil {
		return m.SelectPieceFunc(ctx, sessionID, player, pieceType)
	}
	return &service.SelectResult{Success: true, Player: player, PieceType: pieceType, GameState: freshSnapshot()}, nil
}

func (m *MockGameService) Place(ctx context.Context, sessionID string, row, col int, pieceType engine.PieceType) (*service.PlaceResult, error) {
	if m.PlaceFunc != nil {
		return m.PlaceFunc(ctx, sessionID, row, col, pieceType)
	}
	return &service.PlaceResult{Success: true, Turn: &engine.TurnResult{Success: true}, GameState: freshSnapshot()}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return freshSnapshot(), nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return freshSnapshot(), nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Events: []engine.Event{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	cfg := engine.DefaultGameConfig()
	cfg.Name = configName
	return cfg, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %q)", err, w.Body.String())
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		wantConfig     string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "default config",
			requestBody:    nil,
			wantConfig:     "",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "config_id",
			requestBody:    map[string]string{"config_id": "small"},
			wantConfig:     "small",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "config_name fallback",
			requestBody:    map[string]string{"config_name": "big"},
			wantConfig:     "big",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown config",
			requestBody:    map[string]string{"config_id": "nope"},
			wantConfig:     "nope",
			serviceErr:     fmt.Errorf("config 'nope' not found: %w", service.ErrConfigNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "service failure",
			requestBody:    nil,
			serviceErr:     fmt.Errorf("disk on fire"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "malformed body",
			requestBody:    "{not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != tt.wantConfig {
						t.Errorf("Expected config %q, got %q", tt.wantConfig, configName)
					}
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions", tt.requestBody))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			} else {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["error"] == "" || resp["error"] == nil {
					t.Error("Expected error message")
				}
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "aaaa", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-1 * time.Hour)},
				{ID: "bbbb", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-3 * time.Hour)},
				{ID: "cccc", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		query     string
		wantOrder []string
	}{
		{"", []string{"aaaa", "cccc", "bbbb"}},
		{"?sort=created", []string{"cccc", "bbbb", "aaaa"}},
		{"?sort=created&order=asc", []string{"aaaa", "bbbb", "cccc"}},
		{"?order=asc&limit=2", []string{"bbbb", "cccc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if resp.Count != len(tt.wantOrder) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.wantOrder), resp.Count)
			}
			for i, id := range tt.wantOrder {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session %q: %w", sessionID, service.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: "ab12", ConfigName: "classic", GameState: freshSnapshot()}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.GameState == nil || info.GameState.Rows != engine.DefaultRows {
		t.Error("Expected game state in session info")
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/zz99", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
	if w := serve(server, makeRequest("DELETE", "/api/sessions/ab12", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", w.Code)
	}
	if w := serve(server, makeRequest("DELETE", "/api/sessions/zz99", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 deleting unknown session, got %d", w.Code)
	}
}

// Game Operation Tests

func TestSelectPiece(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		wantPlayer     engine.Player
		wantType       engine.PieceType
		expectedStatus int
	}{
		{
			name:           "kitten by name",
			body:           map[string]interface{}{"player": 1, "piece_type": "kitten"},
			wantPlayer:     engine.PlayerOne,
			wantType:       engine.Kitten,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "cat by letter",
			body:           map[string]interface{}{"player": 2, "piece_type": "C"},
			wantPlayer:     engine.PlayerTwo,
			wantType:       engine.Cat,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad player",
			body:           map[string]interface{}{"player": 3, "piece_type": "kitten"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad piece",
			body:           map[string]interface{}{"player": 1, "piece_type": "dog"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &MockGameService{
				SelectPieceFunc: func(ctx context.Context, sessionID string, player engine.Player, pieceType engine.PieceType) (*service.SelectResult, error) {
					called = true
					if player != tt.wantPlayer || pieceType != tt.wantType {
						t.Errorf("Expected %v/%s, got %v/%s", tt.wantPlayer, tt.wantType, player, pieceType)
					}
					return &service.SelectResult{Success: true, Player: player, PieceType: pieceType}, nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/ab12/select", tt.body))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if called != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("Service called = %v for status %d", called, tt.expectedStatus)
			}
		})
	}
}

func TestPlacePiece(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		wantType       engine.PieceType
		result         *service.PlaceResult
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "selected piece",
			body:           map[string]interface{}{"row": 2, "col": 3},
			wantType:       "",
			result:         &service.PlaceResult{Success: true, Message: "PlayerOne placed Kitten at (2,3)"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "explicit cat",
			body:           map[string]interface{}{"row": 2, "col": 3, "piece_type": "cat"},
			wantType:       engine.Cat,
			result:         &service.PlaceResult{Success: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejected move is not an HTTP error",
			body:           map[string]interface{}{"row": 0, "col": 0, "piece_type": "kitten"},
			wantType:       engine.Kitten,
			result:         &service.PlaceResult{Success: false, Reason: engine.ReasonCellOccupied},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing col",
			body:           map[string]interface{}{"row": 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown piece",
			body:           map[string]interface{}{"row": 1, "col": 1, "piece_type": "dragon"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown session",
			body:           map[string]interface{}{"row": 1, "col": 1},
			serviceErr:     service.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				PlaceFunc: func(ctx context.Context, sessionID string, row, col int, pieceType engine.PieceType) (*service.PlaceResult, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					if pieceType != tt.wantType {
						t.Errorf("Expected piece %q, got %q", tt.wantType, pieceType)
					}
					return tt.result, nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/ab12/place", tt.body))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.result != nil && tt.expectedStatus == http.StatusOK {
				var resp service.PlaceResult
				parseResponse(t, w, &resp)
				if resp.Success != tt.result.Success || resp.Reason != tt.result.Reason {
					t.Errorf("Expected %+v, got %+v", tt.result, resp)
				}
			}
		})
	}
}

func TestResetAndState(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.GameOver() {
		t.Error("Expected a fresh snapshot after reset")
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	if snap.CurrentPlayer != engine.PlayerOne {
		t.Errorf("Expected PlayerOne to move, got %v", snap.CurrentPlayer)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/board", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := strings.Count(w.Body.String(), "\n"); got != engine.DefaultRows {
		t.Errorf("Expected %d board lines, got %d", engine.DefaultRows, got)
	}
}

func TestGetHistoryQuery(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?action=PawnPlaced", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc", Action: engine.PawnPlaced}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{}, nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

// Configuration Tests

func TestConfigEndpoints(t *testing.T) {
	var savedName string
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Rows: 6, Cols: 6}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "classic" {
				return nil, service.ErrConfigNotFound
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
			savedName = configName
			return engine.ValidateGameConfig(cfg)
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	var configs []*service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 1 || configs[0].ConfigID != "classic" {
		t.Errorf("Unexpected configs: %+v", configs)
	}

	if w := serve(server, makeRequest("GET", "/api/configs/classic", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/configs/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"name": "Tiny Board", "rows": 4, "cols": 4}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if savedName != "tiny-board" {
		t.Errorf("Expected config ID tiny-board, got %q", savedName)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"name": "huge", "rows": 40}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid config, got %d", w.Code)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"rows": 4}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for nameless config, got %d", w.Code)
	}
}

func TestHealthAndWebSocketGuards(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()
	server := NewServer(mock, hub)

	if w := serve(server, makeRequest("GET", "/health", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected healthy, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws?session=zz99", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
}

// End-to-end over the real service stack

func newRealServer(t *testing.T) (*Server, *websocket.Hub) {
	t.Helper()
	dir := t.TempDir()
	data := []byte(`{"name": "classic", "rows": 6, "cols": 6}`)
	if err := os.WriteFile(filepath.Join(dir, "classic.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	configMgr, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configMgr)

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	return NewServer(gameService, hub), hub
}

func TestMatchOverHTTP(t *testing.T) {
	server, _ := newRealServer(t)

	w := serve(server, makeRequest("POST", "/api/sessions", map[string]string{"config_id": "classic"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	base := "/api/sessions/" + info.ID

	w = serve(server, makeRequest("POST", base+"/select", map[string]interface{}{"player": 1, "piece_type": "kitten"}))
	var sel service.SelectResult
	parseResponse(t, w, &sel)
	if !sel.Success {
		t.Fatalf("Select failed: %s", sel.Message)
	}

	w = serve(server, makeRequest("POST", base+"/place", map[string]interface{}{"row": 2, "col": 2}))
	var placed service.PlaceResult
	parseResponse(t, w, &placed)
	if !placed.Success {
		t.Fatalf("Place failed: %s", placed.Reason)
	}
	if placed.GameState.CurrentPlayer != engine.PlayerTwo {
		t.Errorf("Expected PlayerTwo to move, got %v", placed.GameState.CurrentPlayer)
	}

	// PlayerTwo places next to it and boops the kitten from (2,2) to (2,1)
	w = serve(server, makeRequest("POST", base+"/place", map[string]interface{}{"row": 2, "col": 3, "piece_type": "kitten"}))
	parseResponse(t, w, &placed)
	if !placed.Success || len(placed.Turn.Boops) != 1 {
		t.Fatalf("Expected one boop, got %+v", placed.Turn)
	}
	if placed.GameState.Board[2][1] == nil || placed.GameState.Board[2][1].Owner != engine.PlayerOne {
		t.Error("Expected PlayerOne kitten booped to (2,1)")
	}

	w = serve(server, makeRequest("POST", base+"/place", map[string]interface{}{"row": 2, "col": 3, "piece_type": "kitten"}))
	parseResponse(t, w, &placed)
	if placed.Success || placed.Reason != engine.ReasonCellOccupied {
		t.Errorf("Expected cell_occupied, got %+v", placed)
	}

	w = serve(server, makeRequest("GET", base+"/history?order=asc&action=PawnPlaced", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalEvents != 2 {
		t.Errorf("Expected 2 placement events, got %d", history.TotalEvents)
	}
}

func TestWebSocketReceivesPlacement(t *testing.T) {
	server, hub := newRealServer(t)
	ts := httptest.NewServer(server)
	defer ts.Close()

	w := serve(server, makeRequest("POST", "/api/sessions", nil))
	var info service.SessionInfo
	parseResponse(t, w, &info)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(info.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	serve(server, makeRequest("POST", "/api/sessions/"+info.ID+"/place", map[string]interface{}{"row": 0, "col": 0, "piece_type": "kitten"}))

	events := map[string]bool{}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	for len(events) < 2 {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		events[msg.Event] = true
		if msg.Event == websocket.EventStateUpdate && msg.GameState.Board[0][0] == nil {
			t.Error("State update missing placed kitten")
		}
	}

	if !events[websocket.EventTurn] || !events[websocket.EventStateUpdate] {
		t.Errorf("Expected turn and state_update events, got %v", events)
	}
}
