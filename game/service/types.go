package service

import (
	"time"

	"github.com/wricardo/boop-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.Snapshot   `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// SelectResult contains the result of arming a piece type
type SelectResult struct {
	Success   bool             `json:"success"`
	Player    engine.Player    `json:"player"`
	PieceType engine.PieceType `json:"piece_type"`
	Message   string           `json:"message"`
	GameState *engine.Snapshot `json:"game_state"`
}

// PlaceResult contains the result of a placement
type PlaceResult struct {
	Success   bool               `json:"success"`
	Reason    string             `json:"reason,omitempty"`
	Message   string             `json:"message"`
	Turn      *engine.TurnResult `json:"turn"`
	GameState *engine.Snapshot   `json:"game_state"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page   int                `json:"page"`
	Limit  int                `json:"limit"`
	Order  string             `json:"order"` // "asc" or "desc"
	Action engine.EventAction `json:"action,omitempty"`
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	KittenLimit int    `json:"kitten_limit"`
	CatLimit    int    `json:"cat_limit"`
}
