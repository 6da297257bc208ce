// Command soak plays seeded random Boop matches against a running server
// through the REST API and replays every placement on a local engine,
// failing on the first disagreement.
//
//	soak --url http://localhost:8080 --config classic --games 10 --seed 42
//
// The session ID is saved to .session so the next run keeps playing in the
// same session (and websocket watchers keep seeing the games).
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/boop-game/game/engine"
)

const sessionFile = ".session"

// setupSession resumes the saved or requested session, or creates a new one
func setupSession(ctx context.Context, client *Client, resumeID, configID string) (*engine.GameConfig, error) {
	if resumeID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resumeID = string(bytes.TrimSpace(data))
		}
	}

	if resumeID != "" {
		info, err := client.Resume(ctx, resumeID)
		if err == nil {
			log.WithField("session", info.ID).Info("🔄 resuming session")
			if info.GameConfig != nil {
				return info.GameConfig, nil
			}
			return client.GetConfig(ctx, info.ConfigName)
		}
		log.WithError(err).Warn("failed to resume session (may be expired), creating a new one")
	}

	info, err := client.CreateSession(ctx, configID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"session": info.ID, "config": info.ConfigName}).Info("✨ session created")

	if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
		log.WithError(err).Warn("failed to save session ID")
	}

	if info.GameConfig != nil {
		return info.GameConfig, nil
	}
	return client.GetConfig(ctx, info.ConfigName)
}

// Tally aggregates match results
type Tally struct {
	Wins       map[engine.Player]int
	Unfinished int
	Matches    int
	Placements int
	Boops      int
	Promotions int
}

func (t *Tally) Add(r *MatchResult) {
	if t.Wins == nil {
		t.Wins = map[engine.Player]int{}
	}
	t.Matches++
	t.Placements += r.Placements
	t.Boops += r.Boops
	t.Promotions += r.Promotions
	if r.Winner == engine.NoPlayer {
		t.Unfinished++
		return
	}
	t.Wins[r.Winner]++
}

func (t *Tally) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== %d matches, all placements agreed ===\n", t.Matches)
	fmt.Fprintf(w, "Placements: %d, boops: %d, promotions: %d\n", t.Placements, t.Boops, t.Promotions)
	for _, p := range []engine.Player{engine.PlayerOne, engine.PlayerTwo} {
		fmt.Fprintf(w, "%v: %d wins\n", p, t.Wins[p])
	}
	fmt.Fprintf(w, "Unfinished: %d\n", t.Unfinished)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "soak",
		Usage: "Play random Boop matches through the REST API and check every turn",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Config ID for a new session (default config when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Matches to play"},
			&cli.IntFlag{Name: "max-moves", Value: 500, Usage: "Maximum placements per match"},
			&cli.IntFlag{Name: "seed", Value: 0, Usage: "Random seed (0 uses the clock)"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between placements"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}

			seed := int64(cmd.Int("seed"))
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			log.WithField("url", cmd.String("url")).Info("connecting to game server")
			client := NewClient(cmd.String("url"))
			cfg, err := setupSession(ctx, client, cmd.String("continue"), cmd.String("config"))
			if err != nil {
				return err
			}

			driver := NewDriver(client, cfg, seed, int(cmd.Int("max-moves")))
			driver.delay = cmd.Duration("delay")

			var tally Tally
			for i := 1; i <= int(cmd.Int("games")); i++ {
				result, err := driver.PlayMatch(ctx)
				if err != nil {
					return fmt.Errorf("match %d (seed %d): %w", i, seed, err)
				}
				tally.Add(result)
				log.WithFields(log.Fields{
					"match":      i,
					"winner":     result.Winner,
					"placements": result.Placements,
				}).Info("match finished")
			}

			tally.Print(cmd.Root().Writer)
			fmt.Fprintf(cmd.Root().Writer, "Session: %s\n", client.SessionID())
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
