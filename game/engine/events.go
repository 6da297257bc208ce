package engine

import "time"

// EventAction names an entry in the match event log
type EventAction string

const (
	GameStart                 EventAction = "GameStart"
	CurrentPlayerChanged      EventAction = "CurrentPlayerChanged"
	PawnPlaced                EventAction = "PawnPlaced"
	PawnBumped                EventAction = "PawnBumped"
	PawnBumpedOutOfBoundaries EventAction = "PawnBumpedOutOfBoundaries"
	PawnsPromoted             EventAction = "PawnsPromoted"
	PawnAwarded               EventAction = "PawnAwarded"
	PlayerWin                 EventAction = "PlayerWin"
)

// Event is a single append-only log record
type Event struct {
	Sequence    int          `json:"sequence"`
	Action      EventAction  `json:"action"`
	Player      Player       `json:"player"`
	Opponent    Player       `json:"opponent"`
	PieceType   PieceType    `json:"piece_type,omitempty"`
	Origins     []Coordinate `json:"origins,omitempty"`
	Destination *Coordinate  `json:"destination,omitempty"`
	Turn        int          `json:"turn"`
	Timestamp   int64        `json:"timestamp"`
}

// logEvent appends to the history, filling in opponent, turn and sequence
func (gs *GameState) logEvent(ev Event) Event {
	if !ev.Player.Valid() {
		ev.Player = gs.currentPlayer
	}
	ev.Opponent = ev.Player.Opponent()
	if ev.Turn == 0 {
		ev.Turn = gs.turnNumber
	}
	ev.Sequence = len(gs.history) + 1
	ev.Timestamp = time.Now().Unix()

	gs.history = append(gs.history, ev)
	return ev
}

// CountEvents returns how many events of the given action are in history
func CountEvents(history []Event, action EventAction) int {
	count := 0
	for _, ev := range history {
		if ev.Action == action {
			count++
		}
	}
	return count
}
