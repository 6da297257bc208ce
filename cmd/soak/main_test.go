package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/boop-game/api"
	"github.com/wricardo/boop-game/game/config"
	"github.com/wricardo/boop-game/game/engine"
	"github.com/wricardo/boop-game/game/service"
	"github.com/wricardo/boop-game/game/session"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	configs := map[string]string{
		"classic.json": `{"name": "Classic"}`,
		"small.json":   `{"name": "Small", "rows": 4, "cols": 4, "kitten_limit": 5, "cat_limit": 3}`,
		"cats.yaml":    "name: Cats\nrows: 5\ncols: 5\nstarting_kittens: 4\nstarting_cats: 4\nfirst_player: 2\n",
	}
	for name, content := range configs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
	}
	configMgr, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	server := httptest.NewServer(api.NewServer(service.NewGameService(session.NewManager(), configMgr), nil))
	t.Cleanup(server.Close)
	return server
}

func TestCandidates(t *testing.T) {
	eng := engine.NewEngineWithDefaults()
	if got := len(candidates(eng.Snapshot())); got != 36 {
		t.Errorf("Expected 36 kitten placements on an empty board, got %d", got)
	}

	eng.PlacePiece(0, 0, engine.Kitten)
	snap := eng.Snapshot()
	snap.AvailablePawns[engine.PlayerTwo][engine.Cat] = 1
	if got := len(candidates(snap)); got != 70 {
		t.Errorf("Expected 35 cells x 2 piece types, got %d", got)
	}

	snap.AvailablePawns[engine.PlayerTwo][engine.Kitten] = 0
	snap.AvailablePawns[engine.PlayerTwo][engine.Cat] = 0
	if got := len(candidates(snap)); got != 0 {
		t.Errorf("Expected no placements with an empty hand, got %d", got)
	}
}

func TestDriver_PlayMatch(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	for _, configID := range []string{"classic", "small", "cats"} {
		t.Run(configID, func(t *testing.T) {
			client := NewClient(backend.URL)
			info, err := client.CreateSession(ctx, configID)
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if info.GameConfig == nil {
				t.Fatal("Expected session to carry its config")
			}

			driver := NewDriver(client, info.GameConfig, 5, 300)
			for i := 0; i < 3; i++ {
				result, err := driver.PlayMatch(ctx)
				if err != nil {
					t.Fatalf("match %d failed: %v", i+1, err)
				}
				if result.Placements == 0 {
					t.Error("Expected at least one placement")
				}

				state, err := client.GetState(ctx)
				if err != nil {
					t.Fatalf("GetState failed: %v", err)
				}
				if result.Winner != winnerOf(state.Winner) {
					t.Errorf("Result winner %v disagrees with server state %v", result.Winner, winnerOf(state.Winner))
				}
			}
		})
	}
}

func TestCompareTurn(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	local := engine.NewEngineWithDefaults()
	expected := local.PlacePiece(2, 2, engine.Kitten)

	server := engine.NewEngineWithDefaults()
	turn := server.PlacePiece(2, 2, engine.Kitten)
	agreeing := &service.PlaceResult{Success: true, Turn: turn, GameState: server.Snapshot()}

	if err := compareTurn(cfg, expected, agreeing); err != nil {
		t.Errorf("Expected identical turns to agree: %v", err)
	}

	rejected := &service.PlaceResult{Success: false, Reason: engine.ReasonCellOccupied}
	if err := compareTurn(cfg, expected, rejected); err == nil {
		t.Error("Expected a rejected legal placement to fail")
	}

	p1 := engine.PlayerOne
	wrongWinner := &service.PlaceResult{Success: true, Turn: &engine.TurnResult{Success: true, Winner: &p1}, GameState: server.Snapshot()}
	if err := compareTurn(cfg, expected, wrongWinner); err == nil || !strings.Contains(err.Error(), "winner") {
		t.Errorf("Expected winner mismatch, got %v", err)
	}

	broken := server.Snapshot()
	broken.PawnCoordinates[engine.PlayerOne][engine.Kitten] = nil
	inconsistent := &service.PlaceResult{Success: true, Turn: turn, GameState: broken}
	if err := compareTurn(cfg, expected, inconsistent); err == nil {
		t.Error("Expected an inconsistent server snapshot to fail")
	}
}

func TestSetupSession(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()
	t.Chdir(t.TempDir())

	client := NewClient(backend.URL)
	cfg, err := setupSession(ctx, client, "", "small")
	if err != nil {
		t.Fatalf("setupSession failed: %v", err)
	}
	if cfg.Rows != 4 {
		t.Errorf("Expected small config, got %dx%d", cfg.Rows, cfg.Cols)
	}

	saved, err := os.ReadFile(sessionFile)
	if err != nil || string(saved) != client.SessionID() {
		t.Fatalf("Expected session ID saved, got %q (%v)", saved, err)
	}

	resumed := NewClient(backend.URL)
	if _, err := setupSession(ctx, resumed, "", "classic"); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.SessionID() != client.SessionID() {
		t.Errorf("Expected saved session %s resumed, got %s", client.SessionID(), resumed.SessionID())
	}

	fresh := NewClient(backend.URL)
	if _, err := setupSession(ctx, fresh, "zz99", "classic"); err != nil {
		t.Fatalf("fallback to new session failed: %v", err)
	}
	if fresh.SessionID() == "zz99" {
		t.Error("Expected a new session when the requested one is missing")
	}
}

func TestApp(t *testing.T) {
	backend := newBackend(t)
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	args := []string{"soak", "--url", backend.URL, "--config", "small", "--games", "2", "--seed", "11", "--max-moves", "200"}
	if err := app.Run(context.Background(), args); err != nil {
		t.Fatalf("soak failed: %v", err)
	}

	for _, want := range []string{"=== 2 matches, all placements agreed ===", "PlayerOne:", "Session: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in:\n%s", want, out.String())
		}
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(&MatchResult{Winner: engine.PlayerOne, Placements: 20, Boops: 7, Promotions: 2})
	tally.Add(&MatchResult{Winner: engine.PlayerOne, Placements: 30, Boops: 3})
	tally.Add(&MatchResult{Placements: 500})

	var out bytes.Buffer
	tally.Print(&out)

	for _, want := range []string{"=== 3 matches", "Placements: 550, boops: 10, promotions: 2", "PlayerOne: 2 wins", "PlayerTwo: 0 wins", "Unfinished: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in:\n%s", want, out.String())
		}
	}
}
