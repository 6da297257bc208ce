package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/boop-game/game/engine"
	"github.com/wricardo/boop-game/game/service"
)

// Move is one placement
type Move struct {
	Row       int
	Col       int
	PieceType engine.PieceType
}

func (m Move) String() string {
	return fmt.Sprintf("%s at (%d,%d)", m.PieceType, m.Row, m.Col)
}

// candidates lists every legal placement for the player to move
func candidates(snap *engine.Snapshot) []Move {
	player := snap.CurrentPlayer

	var pieces []engine.PieceType
	for _, t := range []engine.PieceType{engine.Kitten, engine.Cat} {
		if snap.AvailablePawns[player][t] > 0 {
			pieces = append(pieces, t)
		}
	}

	var moves []Move
	for r, row := range snap.Board {
		for c, p := range row {
			if p != nil {
				continue
			}
			for _, t := range pieces {
				moves = append(moves, Move{Row: r, Col: c, PieceType: t})
			}
		}
	}
	return moves
}

// MatchResult summarizes one finished or abandoned match
type MatchResult struct {
	Winner     engine.Player
	Placements int
	Boops      int
	Promotions int
}

// Driver plays seeded random matches through the REST API and replays every
// placement on a local engine. Any disagreement between the server and the
// local replay fails the match.
type Driver struct {
	client   *Client
	config   *engine.GameConfig
	rng      *rand.Rand
	maxMoves int
	delay    time.Duration
}

func NewDriver(client *Client, cfg *engine.GameConfig, seed int64, maxMoves int) *Driver {
	return &Driver{
		client:   client,
		config:   cfg,
		rng:      rand.New(rand.NewSource(seed)),
		maxMoves: maxMoves,
	}
}

// PlayMatch resets the session and plays until someone wins, the player to
// move has nothing to place, or maxMoves placements have been made
func (d *Driver) PlayMatch(ctx context.Context) (*MatchResult, error) {
	snap, err := d.client.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	local, err := engine.NewEngineFromSnapshot(d.config, snap)
	if err != nil {
		return nil, fmt.Errorf("server snapshot after reset: %w", err)
	}

	result := &MatchResult{}
	for result.Placements < d.maxMoves && !snap.GameOver() {
		moves := candidates(snap)
		if len(moves) == 0 {
			log.WithField("player", snap.CurrentPlayer).Warn("no legal placement available")
			break
		}
		move := moves[d.rng.Intn(len(moves))]

		placed, err := d.client.Place(ctx, move)
		if err != nil {
			return nil, fmt.Errorf("place %v: %w", move, err)
		}
		expected := local.PlacePiece(move.Row, move.Col, move.PieceType)

		if err := compareTurn(d.config, expected, placed); err != nil {
			return nil, fmt.Errorf("placement %d (%v): %w", result.Placements+1, move, err)
		}
		if want, got := engine.RenderGrid(local.Snapshot().Board), engine.RenderGrid(placed.GameState.Board); want != got {
			return nil, fmt.Errorf("placement %d (%v): boards differ\nserver:\n%s\nlocal:\n%s", result.Placements+1, move, got, want)
		}

		log.WithFields(log.Fields{
			"player": expected.Player,
			"move":   move.String(),
			"boops":  len(expected.Boops),
		}).Debug("placed")

		snap = placed.GameState
		result.Placements++
		result.Boops += len(expected.Boops)
		result.Promotions += (len(expected.Promotions) + len(expected.OpponentPromotions)) / 3

		if d.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.delay):
			}
		}
	}

	if snap.Winner != nil {
		result.Winner = *snap.Winner
	}
	return result, nil
}

// compareTurn checks the server's answer against the local replay and the
// returned snapshot against the board/index invariant
func compareTurn(cfg *engine.GameConfig, expected *engine.TurnResult, got *service.PlaceResult) error {
	if got.Success != expected.Success {
		return fmt.Errorf("server success=%v (%s), local success=%v (%s)", got.Success, got.Reason, expected.Success, expected.Reason)
	}
	if !got.Success {
		return fmt.Errorf("legal placement rejected: %s", got.Reason)
	}
	if got.Turn == nil || got.GameState == nil {
		return fmt.Errorf("server result is missing the turn or the state")
	}

	turn := got.Turn
	if len(turn.Boops) != len(expected.Boops) {
		return fmt.Errorf("server booped %d pieces, local %d", len(turn.Boops), len(expected.Boops))
	}
	if len(turn.Promotions) != len(expected.Promotions) || len(turn.OpponentPromotions) != len(expected.OpponentPromotions) {
		return fmt.Errorf("promotions differ: server %v/%v, local %v/%v",
			turn.Promotions, turn.OpponentPromotions, expected.Promotions, expected.OpponentPromotions)
	}
	if winnerOf(turn.Winner) != winnerOf(expected.Winner) {
		return fmt.Errorf("server winner %v, local %v", winnerOf(turn.Winner), winnerOf(expected.Winner))
	}

	if _, err := engine.NewEngineFromSnapshot(cfg, got.GameState); err != nil {
		return fmt.Errorf("server snapshot: %w", err)
	}
	return nil
}

func winnerOf(p *engine.Player) engine.Player {
	if p == nil {
		return engine.NoPlayer
	}
	return *p
}
