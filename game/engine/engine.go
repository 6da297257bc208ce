package engine

import "fmt"

// Reason codes reported by a rejected turn
const (
	ReasonGameOver         = "game_over"
	ReasonInvalidPiece     = "invalid_piece"
	ReasonOutOfBounds      = "out_of_bounds"
	ReasonCellOccupied     = "cell_occupied"
	ReasonNoInventory      = "no_inventory"
	ReasonNoPieceSelected  = "no_piece_selected"
	ReasonNotCurrentPlayer = "not_current_player"
)

// Engine provides the main interface for match operations
type Engine interface {
	// Match state
	GetState() *GameState
	Snapshot() *Snapshot
	Reset() *Snapshot
	IsGameOver() bool
	Winner() Player
	CurrentPlayer() Player

	// Turn operations
	SelectPiece(player Player, pieceType PieceType) bool
	SelectedPiece() PieceType
	Place(row, col int) *TurnResult
	PlacePiece(row, col int, pieceType PieceType) *TurnResult
	CanPlace(row, col int, pieceType PieceType) (bool, string)

	// Configuration
	GetConfig() *GameConfig

	// History
	GetHistory() []Event
	GetLastEvent() *Event

	// Inventories
	GetAvailablePawns(player Player, pieceType PieceType) int
	GetPawnCoordinates(player Player, pieceType PieceType) []Coordinate
}

// TurnResult reports everything a single placement caused
type TurnResult struct {
	Success   bool         `json:"success"`
	Reason    string       `json:"reason,omitempty"`
	Player    Player       `json:"player"`
	PieceType PieceType    `json:"piece_type,omitempty"`
	Placed    *Coordinate  `json:"placed,omitempty"`
	Boops     []BoopResult `json:"boops,omitempty"`

	// Promotions made by the placing player at the placed cell
	Promotions []Coordinate `json:"promotions,omitempty"`
	// Promotions made by the pushed pieces' owner at boop destinations
	OpponentPromotions []Coordinate `json:"opponent_promotions,omitempty"`

	Winner *Player `json:"winner,omitempty"`
	Events []Event `json:"events,omitempty"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state    *GameState
	config   *GameConfig
	selected PieceType
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	state, err := newMatch(config)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  state,
	}, nil
}

// NewEngineWithDefaults creates a new engine on the classic configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return engine
}

// NewEngineFromSnapshot restores an engine from persisted state
func NewEngineFromSnapshot(config *GameConfig, snap *Snapshot) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	state, err := RestoreGameState(config, snap)
	if err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config, state: state}
	if snap.SelectedPiece.Valid() {
		engine.selected = snap.SelectedPiece
	}
	return engine, nil
}

func newMatch(config *GameConfig) (*GameState, error) {
	board, err := NewBoard(config.Rows, config.Cols)
	if err != nil {
		return nil, err
	}
	return NewGameState(config, board), nil
}

// GetState returns the underlying game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a read-only view of the match
func (e *GameEngine) Snapshot() *Snapshot {
	snap := e.state.Snapshot()
	snap.SelectedPiece = e.selected
	return snap
}

// Reset discards the match and starts a new one with the same configuration
func (e *GameEngine) Reset() *Snapshot {
	state, err := newMatch(e.config)
	if err != nil {
		// config was validated at construction
		panic(fmt.Sprintf("engine: reset failed: %v", err))
	}
	e.state = state
	e.selected = ""
	return e.Snapshot()
}

// IsGameOver returns whether a player has won
func (e *GameEngine) IsGameOver() bool {
	return e.state.Winner() != NoPlayer
}

// Winner returns the winning player or NoPlayer
func (e *GameEngine) Winner() Player {
	return e.state.Winner()
}

// CurrentPlayer returns whose turn it is
func (e *GameEngine) CurrentPlayer() Player {
	return e.state.CurrentPlayer()
}

// SelectPiece arms a piece type for the next placement. Only the current
// player may select, and only a type they still have in their pool.
func (e *GameEngine) SelectPiece(player Player, pieceType PieceType) bool {
	if e.IsGameOver() || !pieceType.Valid() {
		return false
	}
	if player != e.state.CurrentPlayer() {
		return false
	}
	if e.state.GetAvailablePawns(pieceType, player) <= 0 {
		return false
	}
	e.selected = pieceType
	return true
}

// SelectedPiece returns the armed piece type, or "" if none
func (e *GameEngine) SelectedPiece() PieceType {
	return e.selected
}

// Place puts the selected piece at (row, col) for the current player
func (e *GameEngine) Place(row, col int) *TurnResult {
	if e.selected == "" {
		return &TurnResult{
			Player: e.state.CurrentPlayer(),
			Reason: ReasonNoPieceSelected,
		}
	}
	return e.PlacePiece(row, col, e.selected)
}

// CanPlace reports whether the current player may place pieceType at
// (row, col), with a reason code when not
func (e *GameEngine) CanPlace(row, col int, pieceType PieceType) (bool, string) {
	if e.IsGameOver() {
		return false, ReasonGameOver
	}
	if !pieceType.Valid() {
		return false, ReasonInvalidPiece
	}

	board := e.state.Board()
	if row < 0 || row >= board.Rows() || col < 0 || col >= board.Cols() {
		return false, ReasonOutOfBounds
	}
	if board.PieceAt(row, col) != nil {
		return false, ReasonCellOccupied
	}
	if e.state.GetAvailablePawns(pieceType, e.state.CurrentPlayer()) <= 0 {
		return false, ReasonNoInventory
	}
	return true, ""
}

// PlacePiece runs a full turn for the current player: placement, win check,
// boops, promotions, then follow-up win and promotion checks at every cell a
// pushed piece landed on. The turn passes unless the match was won.
func (e *GameEngine) PlacePiece(row, col int, pieceType PieceType) *TurnResult {
	player := e.state.CurrentPlayer()
	result := &TurnResult{Player: player, PieceType: pieceType}

	if ok, reason := e.CanPlace(row, col, pieceType); !ok {
		result.Reason = reason
		return result
	}

	before := e.state.HistoryLen()
	if !e.state.RegisterPawn(row, col, pieceType, player) {
		result.Reason = ReasonNoInventory
		return result
	}
	e.selected = ""

	placed := Coordinate{Row: row, Col: col}
	result.Success = true
	result.Placed = &placed

	e.state.CheckWinCondition(row, col, player)
	result.Boops = e.state.BoopScan(row, col, player)
	result.Promotions = e.state.PromotionScan(row, col, player)

	// A pushed piece can complete a line for its own owner
	for _, boop := range result.Boops {
		if boop.Destination == nil {
			continue
		}
		dest := *boop.Destination
		e.state.CheckWinCondition(dest.Row, dest.Col, boop.Player)
		promoted := e.state.PromotionScan(dest.Row, dest.Col, boop.Player)
		result.OpponentPromotions = append(result.OpponentPromotions, promoted...)
	}

	if winner := e.state.Winner(); winner != NoPlayer {
		result.Winner = &winner
	} else {
		e.state.SwitchPlayer()
	}

	result.Events = e.state.HistorySince(before)
	return result
}

// GetConfig returns the match configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetHistory returns the complete event log
func (e *GameEngine) GetHistory() []Event {
	return e.state.History()
}

// GetLastEvent returns the most recent event, or nil if none
func (e *GameEngine) GetLastEvent() *Event {
	history := e.state.History()
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}

// GetAvailablePawns returns player's pool size for a piece type
func (e *GameEngine) GetAvailablePawns(player Player, pieceType PieceType) int {
	return e.state.GetAvailablePawns(pieceType, player)
}

// GetPawnCoordinates returns player's placed coordinates for a piece type
func (e *GameEngine) GetPawnCoordinates(player Player, pieceType PieceType) []Coordinate {
	return e.state.GetPawnCoordinates(pieceType, player)
}
