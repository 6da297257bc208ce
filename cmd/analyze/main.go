// Command analyze prints quick, human-readable reports about Boop configs and
// saved sessions.
//
//	analyze configs [--dir configs] [--games 200] [--seed 1]
//	analyze sessions [--dir sessions]
//	analyze session [--dir sessions] <id>
//
// The configs report lists board geometry and the outcome of seeded random
// matches (length, first-player advantage, boops and promotions per match).
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/boop-game/game/config"
	"github.com/wricardo/boop-game/game/engine"
	"github.com/wricardo/boop-game/game/session"
)

// maxMoves caps a simulated match that stalls with empty hands
const maxMoves = 1000

// SimulationStats aggregates seeded random matches on one config
type SimulationStats struct {
	Games      int
	Wins       map[engine.Player]int
	Stalled    int
	TotalTurns int
	Boops      int
	Promotions int
}

// AvgTurns is the mean number of placements per match
func (s SimulationStats) AvgTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.Games)
}

// WinRate is the share of matches won by p
func (s SimulationStats) WinRate(p engine.Player) float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins[p]) / float64(s.Games)
}

// linesOfThree counts the distinct three-in-a-row lines on a board
func linesOfThree(rows, cols int) int {
	if rows < 1 || cols < 1 {
		return 0
	}
	count := 0
	if cols >= 3 {
		count += rows * (cols - 2)
	}
	if rows >= 3 {
		count += (rows - 2) * cols
	}
	if rows >= 3 && cols >= 3 {
		count += 2 * (rows - 2) * (cols - 2)
	}
	return count
}

// simulate plays random legal placements until someone wins or the current
// player has nothing left to place
func simulate(cfg *engine.GameConfig, games int, seed int64) (SimulationStats, error) {
	stats := SimulationStats{Games: games, Wins: map[engine.Player]int{}}
	rng := rand.New(rand.NewSource(seed))

	for g := 0; g < games; g++ {
		eng, err := engine.NewEngine(cfg)
		if err != nil {
			return stats, err
		}

		moves := 0
		for ; moves < maxMoves && !eng.IsGameOver(); moves++ {
			row, col, pieceType, ok := randomMove(eng, rng)
			if !ok {
				break
			}
			turn := eng.PlacePiece(row, col, pieceType)
			if !turn.Success {
				return stats, fmt.Errorf("game %d: placement at (%d,%d) rejected: %s", g+1, row, col, turn.Reason)
			}
			stats.Boops += len(turn.Boops)
			stats.Promotions += len(turn.Promotions)/3 + len(turn.OpponentPromotions)/3
		}

		stats.TotalTurns += moves
		if w := eng.Winner(); w != engine.NoPlayer {
			stats.Wins[w]++
		} else {
			stats.Stalled++
		}
	}
	return stats, nil
}

func randomMove(eng *engine.GameEngine, rng *rand.Rand) (int, int, engine.PieceType, bool) {
	player := eng.CurrentPlayer()

	var pieces []engine.PieceType
	for _, t := range []engine.PieceType{engine.Kitten, engine.Cat} {
		if eng.GetAvailablePawns(player, t) > 0 {
			pieces = append(pieces, t)
		}
	}

	var empty []engine.Coordinate
	for r, row := range eng.Snapshot().Board {
		for c, p := range row {
			if p == nil {
				empty = append(empty, engine.Coordinate{Row: r, Col: c})
			}
		}
	}
	if len(pieces) == 0 || len(empty) == 0 {
		return 0, 0, "", false
	}

	cell := empty[rng.Intn(len(empty))]
	return cell.Row, cell.Col, pieces[rng.Intn(len(pieces))], true
}

func analyzeConfigs(w io.Writer, dir string, games int, seed int64) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no configs found in %s", dir)
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.Filename)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError: %v\n", info.Filename, err)
			continue
		}

		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		fmt.Fprintf(w, "Name: %s\n", cfg.Name)
		fmt.Fprintf(w, "Board: %d x %d (%d cells)\n", cfg.Rows, cfg.Cols, cfg.Rows*cfg.Cols)
		fmt.Fprintf(w, "Lines of three: %d\n", linesOfThree(cfg.Rows, cfg.Cols))
		fmt.Fprintf(w, "Limits: %d kittens, %d cats per player\n", cfg.KittenLimit, cfg.CatLimit)
		fmt.Fprintf(w, "Starting pool: %d kittens, %d cats\n", cfg.StartingKittens, cfg.StartingCats)

		if fill := float64(2*cfg.KittenLimit) / float64(cfg.Rows*cfg.Cols); fill > 0.75 {
			fmt.Fprintf(w, "⚠️  Kittens cover %.0f%% of the board, expect crowded play\n", fill*100)
		}

		if games <= 0 {
			continue
		}
		stats, err := simulate(cfg, games, seed)
		if err != nil {
			fmt.Fprintf(w, "❌ Simulation failed: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "Random play (%d games): avg %.1f placements, %.2f boops and %.2f promotions per game\n",
			stats.Games, stats.AvgTurns(),
			float64(stats.Boops)/float64(stats.Games), float64(stats.Promotions)/float64(stats.Games))
		fmt.Fprintf(w, "  %v wins %.0f%%, %v wins %.0f%%, stalled %d\n",
			cfg.FirstPlayer, stats.WinRate(cfg.FirstPlayer)*100,
			cfg.FirstPlayer.Opponent(), stats.WinRate(cfg.FirstPlayer.Opponent())*100,
			stats.Stalled)
	}
	return nil
}

// loadSessions reads every persisted session in dir, newest first
func loadSessions(dir string) ([]*session.PersistedSessionData, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var sessions []*session.PersistedSessionData
	for _, file := range files {
		data, err := session.ReadSessionFile(file)
		if err != nil {
			log.WithField("file", file).WithError(err).Warn("skipping unreadable session")
			continue
		}
		sessions = append(sessions, data)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastAccessedAt.After(sessions[j].LastAccessedAt)
	})
	return sessions, nil
}

func status(snap *engine.Snapshot) string {
	if snap.Winner != nil {
		return fmt.Sprintf("%v won", *snap.Winner)
	}
	return fmt.Sprintf("%v to move", snap.CurrentPlayer)
}

func analyzeSessions(w io.Writer, dir string) error {
	sessions, err := loadSessions(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Sessions in %s: %d\n\n", dir, len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(w, "%-6s %-10s turn %-4d %-20s last seen %s\n",
			s.ID, s.ConfigName, s.GameState.TurnNumber, status(s.GameState),
			s.LastAccessedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func analyzeSession(w io.Writer, dir, id string) error {
	data, err := session.ReadSessionFile(filepath.Join(dir, strings.ToLower(id)+".json"))
	if err != nil {
		return fmt.Errorf("session %s: %w", id, err)
	}
	snap := data.GameState

	fmt.Fprintf(w, "Session: %s (config %s)\n", data.ID, data.ConfigName)
	fmt.Fprintf(w, "Match: %s, turn %d, %s\n\n", snap.MatchID, snap.TurnNumber, status(snap))
	fmt.Fprintln(w, engine.RenderGrid(snap.Board))
	fmt.Fprintln(w)

	for _, p := range []engine.Player{engine.PlayerOne, engine.PlayerTwo} {
		fmt.Fprintf(w, "%v: %d kittens and %d cats in hand, %d kittens and %d cats on board\n", p,
			snap.AvailablePawns[p][engine.Kitten], snap.AvailablePawns[p][engine.Cat],
			len(snap.PawnCoordinates[p][engine.Kitten]), len(snap.PawnCoordinates[p][engine.Cat]))
	}

	counts := map[engine.EventAction]int{}
	for _, ev := range snap.History {
		counts[ev.Action]++
	}
	actions := make([]string, 0, len(counts))
	for action := range counts {
		actions = append(actions, string(action))
	}
	sort.Strings(actions)

	fmt.Fprintf(w, "\nEvents (%d):\n", len(snap.History))
	for _, action := range actions {
		fmt.Fprintf(w, "  %-26s %d\n", action, counts[engine.EventAction(action)])
	}
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Reports on Boop configs and saved sessions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "configs",
				Usage: "Summarize every config and simulate random matches",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Config directory"},
					&cli.IntFlag{Name: "games", Value: 200, Usage: "Random matches per config (0 to skip)"},
					&cli.IntFlag{Name: "seed", Value: 1, Usage: "Random seed"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return analyzeConfigs(cmd.Root().Writer, cmd.String("dir"), int(cmd.Int("games")), int64(cmd.Int("seed")))
				},
			},
			{
				Name:  "sessions",
				Usage: "List saved sessions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "sessions", Usage: "Sessions directory"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return analyzeSessions(cmd.Root().Writer, cmd.String("dir"))
				},
			},
			{
				Name:      "session",
				Usage:     "Show one saved session",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "sessions", Usage: "Sessions directory"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("session id required")
					}
					return analyzeSession(cmd.Root().Writer, cmd.String("dir"), id)
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
