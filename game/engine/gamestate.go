package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// GameState is the per-match mutable aggregate: inventories, the coordinate
// index, the current player, the turn counter and the event log. It owns
// exactly one board.
//
// Invariant: every coordinate in the index points at a board cell holding a
// piece of that owner and type, and placed + available never exceeds the
// configured limit.
type GameState struct {
	matchID       string
	config        *GameConfig
	board         Rules
	currentPlayer Player
	winner        Player
	turnNumber    int
	available     map[Player]map[PieceType]int
	coordinates   map[Player]map[PieceType][]Coordinate
	history       []Event
}

// NewGameState starts a match on the given board and logs GameStart
func NewGameState(config *GameConfig, board Rules) *GameState {
	gs := newEmptyState(config, board)
	gs.logEvent(Event{Action: GameStart, Player: gs.currentPlayer})
	return gs
}

func newEmptyState(config *GameConfig, board Rules) *GameState {
	gs := &GameState{
		matchID:       uuid.NewString(),
		config:        config,
		board:         board,
		currentPlayer: config.FirstPlayer,
		winner:        NoPlayer,
		turnNumber:    1,
		available:     make(map[Player]map[PieceType]int),
		coordinates:   make(map[Player]map[PieceType][]Coordinate),
		history:       []Event{},
	}
	if !gs.currentPlayer.Valid() {
		gs.currentPlayer = PlayerOne
	}

	for _, p := range Players {
		gs.available[p] = make(map[PieceType]int)
		gs.coordinates[p] = make(map[PieceType][]Coordinate)
		for _, t := range PieceTypes {
			gs.available[p][t] = config.Starting(t)
			gs.coordinates[p][t] = []Coordinate{}
		}
	}
	return gs
}

// MatchID identifies this match; a reset produces a new one
func (gs *GameState) MatchID() string { return gs.matchID }

// Config returns the match configuration
func (gs *GameState) Config() *GameConfig { return gs.config }

// Board returns the board the state drives
func (gs *GameState) Board() Rules { return gs.board }

// CurrentPlayer returns whose turn it is
func (gs *GameState) CurrentPlayer() Player { return gs.currentPlayer }

// Winner returns the winning player, or NoPlayer while the match is open
func (gs *GameState) Winner() Player { return gs.winner }

// TurnNumber returns the 1-based turn counter
func (gs *GameState) TurnNumber() int { return gs.turnNumber }

// History returns a copy of the event log
func (gs *GameState) History() []Event {
	out := make([]Event, len(gs.history))
	copy(out, gs.history)
	return out
}

// HistoryLen returns the number of logged events
func (gs *GameState) HistoryLen() int { return len(gs.history) }

// HistorySince returns a copy of events logged after the first n
func (gs *GameState) HistorySince(n int) []Event {
	if n < 0 {
		n = 0
	}
	if n >= len(gs.history) {
		return []Event{}
	}
	out := make([]Event, len(gs.history)-n)
	copy(out, gs.history[n:])
	return out
}

// SwitchPlayer hands the turn to the other player and advances the turn counter
func (gs *GameState) SwitchPlayer() Player {
	gs.currentPlayer = gs.currentPlayer.Opponent()
	gs.turnNumber++
	gs.logEvent(Event{Action: CurrentPlayerChanged, Player: gs.currentPlayer})
	return gs.currentPlayer
}

// GetAvailablePawns returns player's pool size for a piece type
func (gs *GameState) GetAvailablePawns(pieceType PieceType, player Player) int {
	if pools, ok := gs.available[player]; ok {
		return pools[pieceType]
	}
	return 0
}

// GetPawnCoordinates returns a copy of player's placed coordinates for a piece type
func (gs *GameState) GetPawnCoordinates(pieceType PieceType, player Player) []Coordinate {
	coords := gs.coordinates[player][pieceType]
	out := make([]Coordinate, len(coords))
	copy(out, coords)
	return out
}

// AddPawnToAvailablePlayerPawns returns pieces to player's pool. The pool
// saturates so that pool plus placed pieces never exceeds the limit.
func (gs *GameState) AddPawnToAvailablePlayerPawns(pieceType PieceType, count int, player Player) {
	if !player.Valid() || !pieceType.Valid() {
		return
	}
	if count <= 0 {
		count = 1
	}

	ceiling := gs.config.Limit(pieceType) - len(gs.coordinates[player][pieceType])
	if ceiling < 0 {
		ceiling = 0
	}

	next := gs.available[player][pieceType] + count
	if next > ceiling {
		next = ceiling
	}
	gs.available[player][pieceType] = next
}

// RemovePawnFromAvailablePlayerPawns takes pieces from player's pool, saturating at zero
func (gs *GameState) RemovePawnFromAvailablePlayerPawns(pieceType PieceType, count int, player Player) {
	if !player.Valid() || !pieceType.Valid() {
		return
	}
	if count <= 0 {
		count = 1
	}

	next := gs.available[player][pieceType] - count
	if next < 0 {
		next = 0
	}
	gs.available[player][pieceType] = next
}

// addPawnCoordinate records a placed piece, ignoring duplicates
func (gs *GameState) addPawnCoordinate(coord Coordinate, pieceType PieceType, player Player) {
	for _, c := range gs.coordinates[player][pieceType] {
		if c == coord {
			return
		}
	}
	gs.coordinates[player][pieceType] = append(gs.coordinates[player][pieceType], coord)
}

// RemovePawnCoordinate drops a coordinate from player's index
func (gs *GameState) RemovePawnCoordinate(row, col int, pieceType PieceType, player Player) bool {
	coords := gs.coordinates[player][pieceType]
	for i, c := range coords {
		if c.Row == row && c.Col == col {
			gs.coordinates[player][pieceType] = append(coords[:i:i], coords[i+1:]...)
			return true
		}
	}
	return false
}

// RegisterPawn places a piece from player's pool. It fails without mutating
// when the pool is empty, the cell is occupied or out of bounds.
func (gs *GameState) RegisterPawn(row, col int, pieceType PieceType, player Player) bool {
	if !player.Valid() || !pieceType.Valid() {
		return false
	}
	if gs.GetAvailablePawns(pieceType, player) <= 0 {
		return false
	}
	if !gs.board.PlacePiece(row, col, NewPiece(player, pieceType)) {
		return false
	}

	gs.RemovePawnFromAvailablePlayerPawns(pieceType, 1, player)
	coord := Coordinate{Row: row, Col: col}
	gs.addPawnCoordinate(coord, pieceType, player)

	gs.logEvent(Event{
		Action:    PawnPlaced,
		Player:    player,
		PieceType: pieceType,
		Origins:   []Coordinate{coord},
	})
	return true
}

// CheckWinCondition scans all 8 directions from (row, col) for player. The
// cell must hold player's Cat. The first winner found stands: once set it is
// never overwritten.
func (gs *GameState) CheckWinCondition(row, col int, player Player) Player {
	if gs.winner != NoPlayer || !player.Valid() {
		return NoPlayer
	}
	if p := gs.board.PieceAt(row, col); p == nil || p.Owner != player || p.Type != Cat {
		return NoPlayer
	}

	for _, dir := range gs.board.DirectionsList() {
		if gs.board.HasPlayerWon(row, col, dir, player) {
			gs.winner = player
			gs.logEvent(Event{Action: PlayerWin, Player: player})
			return gs.winner
		}
	}
	return NoPlayer
}

// BoopScan pushes every boopable neighbor of (row, col) and keeps the
// coordinate index and pools in step. Returns nil when nothing moved.
func (gs *GameState) BoopScan(row, col int, player Player) []BoopResult {
	var results []BoopResult

	for _, dir := range gs.board.DirectionsList() {
		res := gs.board.BoopPawn(row, col, dir, player)
		if res == nil {
			continue
		}
		results = append(results, *res)

		owner := res.Player
		gs.RemovePawnCoordinate(res.Origin.Row, res.Origin.Col, res.PieceType, owner)

		if res.Destination != nil {
			gs.addPawnCoordinate(*res.Destination, res.PieceType, owner)
			gs.logEvent(Event{
				Action:      PawnBumped,
				Player:      owner,
				PieceType:   res.PieceType,
				Origins:     []Coordinate{res.Origin},
				Destination: res.Destination,
			})
			continue
		}

		// Fell off the board: back to the owner's pool
		gs.AddPawnToAvailablePlayerPawns(res.PieceType, 1, owner)
		gs.logEvent(Event{
			Action:    PawnBumpedOutOfBoundaries,
			Player:    owner,
			PieceType: res.PieceType,
			Origins:   []Coordinate{res.Origin},
		})
		gs.logEvent(Event{
			Action:    PawnAwarded,
			Player:    owner,
			PieceType: res.PieceType,
		})
	}

	return results
}

// PromotionScan promotes every kitten triple through (row, col) for player.
// Each triple returns 3 kittens to the pool and grants 1 cat. Returns nil
// when no promotion happened.
func (gs *GameState) PromotionScan(row, col int, player Player) []Coordinate {
	var promoted []Coordinate

	for _, dir := range gs.board.DirectionsList() {
		cleared := gs.board.PromoteKittens(row, col, dir, player)
		if cleared == nil {
			continue
		}
		promoted = append(promoted, cleared...)

		for _, c := range cleared {
			gs.RemovePawnCoordinate(c.Row, c.Col, Kitten, player)
		}
		gs.AddPawnToAvailablePlayerPawns(Kitten, promotedKittens, player)
		gs.AddPawnToAvailablePlayerPawns(Cat, 1, player)

		gs.logEvent(Event{
			Action:    PawnsPromoted,
			Player:    player,
			PieceType: Kitten,
			Origins:   cleared,
		})
		gs.logEvent(Event{
			Action:    PawnAwarded,
			Player:    player,
			PieceType: Cat,
		})
	}

	return promoted
}

// CheckConsistency verifies the coordinate index against the board and the
// pool limits
func (gs *GameState) CheckConsistency() error {
	indexed := 0
	for _, p := range Players {
		for _, t := range PieceTypes {
			coords := gs.coordinates[p][t]
			seen := make(map[Coordinate]bool, len(coords))
			for _, c := range coords {
				if seen[c] {
					return fmt.Errorf("%v %s indexed twice at %v", p, t, c)
				}
				seen[c] = true

				piece := gs.board.PieceAt(c.Row, c.Col)
				if piece == nil || piece.Owner != p || piece.Type != t {
					return fmt.Errorf("%v %s indexed at %v but board disagrees", p, t, c)
				}
			}
			indexed += len(coords)

			avail := gs.available[p][t]
			if avail < 0 {
				return fmt.Errorf("%v %s pool is negative: %d", p, t, avail)
			}
			if limit := gs.config.Limit(t); len(coords)+avail > limit {
				return fmt.Errorf("%v %s placed %d + available %d exceeds limit %d", p, t, len(coords), avail, limit)
			}
		}
	}

	onBoard := 0
	for r := 0; r < gs.board.Rows(); r++ {
		for c := 0; c < gs.board.Cols(); c++ {
			if gs.board.PieceAt(r, c) != nil {
				onBoard++
			}
		}
	}
	if onBoard != indexed {
		return fmt.Errorf("board holds %d pieces but index lists %d", onBoard, indexed)
	}
	return nil
}
