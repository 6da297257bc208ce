package engine

import "fmt"

// Snapshot is the read-only, JSON-serialisable view of a match handed to
// renderers, transports and persistence
type Snapshot struct {
	MatchID         string                                `json:"match_id"`
	ConfigName      string                                `json:"config_name"`
	Rows            int                                   `json:"rows"`
	Cols            int                                   `json:"cols"`
	Board           [][]*Piece                            `json:"board"`
	BoardText       string                                `json:"board_text,omitempty"`
	CurrentPlayer   Player                                `json:"current_player"`
	Winner          *Player                               `json:"winner"`
	TurnNumber      int                                   `json:"turn_number"`
	SelectedPiece   PieceType                             `json:"selected_piece,omitempty"`
	AvailablePawns  map[Player]map[PieceType]int          `json:"available_pawns"`
	PawnCoordinates map[Player]map[PieceType][]Coordinate `json:"pawn_coordinates"`
	History         []Event                               `json:"history"`
}

// GameOver reports whether the snapshot has a winner
func (s *Snapshot) GameOver() bool {
	return s.Winner != nil
}

// Snapshot captures the full state of the match
func (gs *GameState) Snapshot() *Snapshot {
	snap := &Snapshot{
		MatchID:         gs.matchID,
		ConfigName:      gs.config.Name,
		Rows:            gs.board.Rows(),
		Cols:            gs.board.Cols(),
		CurrentPlayer:   gs.currentPlayer,
		TurnNumber:      gs.turnNumber,
		AvailablePawns:  make(map[Player]map[PieceType]int),
		PawnCoordinates: make(map[Player]map[PieceType][]Coordinate),
		History:         gs.History(),
	}

	grid := make([][]*Piece, snap.Rows)
	for r := range grid {
		grid[r] = make([]*Piece, snap.Cols)
		for c := range grid[r] {
			if p := gs.board.PieceAt(r, c); p != nil {
				cp := *p
				grid[r][c] = &cp
			}
		}
	}
	snap.Board = grid
	snap.BoardText = RenderGrid(grid)

	if gs.winner != NoPlayer {
		w := gs.winner
		snap.Winner = &w
	}

	for _, p := range Players {
		snap.AvailablePawns[p] = make(map[PieceType]int)
		snap.PawnCoordinates[p] = make(map[PieceType][]Coordinate)
		for _, t := range PieceTypes {
			snap.AvailablePawns[p][t] = gs.GetAvailablePawns(t, p)
			snap.PawnCoordinates[p][t] = gs.GetPawnCoordinates(t, p)
		}
	}

	return snap
}

// RestoreGameState rebuilds a match from a snapshot and verifies that the
// board and the coordinate index agree
func RestoreGameState(config *GameConfig, snap *Snapshot) (*GameState, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if snap.Rows != config.Rows || snap.Cols != config.Cols {
		return nil, fmt.Errorf("snapshot is %dx%d but config %q is %dx%d",
			snap.Rows, snap.Cols, config.Name, config.Rows, config.Cols)
	}

	board, err := NewBoard(config.Rows, config.Cols)
	if err != nil {
		return nil, err
	}

	if len(snap.Board) != snap.Rows {
		return nil, fmt.Errorf("snapshot board has %d rows, expected %d", len(snap.Board), snap.Rows)
	}
	for r, row := range snap.Board {
		if len(row) != snap.Cols {
			return nil, fmt.Errorf("snapshot row %d has %d cells, expected %d", r, len(row), snap.Cols)
		}
		for c, p := range row {
			if p == nil {
				continue
			}
			if !p.Owner.Valid() || !p.Type.Valid() {
				return nil, fmt.Errorf("snapshot cell (%d,%d) holds an invalid piece", r, c)
			}
			board.PlacePiece(r, c, NewPiece(p.Owner, p.Type))
		}
	}

	gs := newEmptyState(config, board)
	if snap.MatchID != "" {
		gs.matchID = snap.MatchID
	}
	if snap.CurrentPlayer.Valid() {
		gs.currentPlayer = snap.CurrentPlayer
	}
	if snap.Winner != nil {
		gs.winner = *snap.Winner
	}
	if snap.TurnNumber > 0 {
		gs.turnNumber = snap.TurnNumber
	}

	for _, p := range Players {
		for _, t := range PieceTypes {
			gs.available[p][t] = snap.AvailablePawns[p][t]
			coords := snap.PawnCoordinates[p][t]
			gs.coordinates[p][t] = make([]Coordinate, len(coords))
			copy(gs.coordinates[p][t], coords)
		}
	}

	gs.history = make([]Event, len(snap.History))
	copy(gs.history, snap.History)

	if err := gs.CheckConsistency(); err != nil {
		return nil, fmt.Errorf("inconsistent snapshot: %w", err)
	}
	return gs, nil
}
