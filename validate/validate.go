// Command validate checks the Boop configuration files in a directory
// (../configs by default). For each .json, .yaml or .yml file it checks:
//   - the file parses and has no unknown keys
//   - board size, piece limits, starting pools and first player are in range
//   - a handful of seeded random matches play out without the board and the
//     piece pools drifting apart
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/boop-game/game/engine"
)

// smokeMatches is the number of random matches played per config
const smokeMatches = 5

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// checkKnownFields rejects keys the config schema does not define
func checkKnownFields(data []byte, ext string) error {
	var probe engine.GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(&probe)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(&probe)
	}
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := filepath.Ext(filePath)
	if err := checkKnownFields(data, ext); err != nil {
		result.fail("Invalid structure: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(data, ext)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if err := smokeTest(config, smokeMatches); err != nil {
		result.fail("Smoke test: %v", err)
		return result
	}

	result.info("Name: %s", config.Name)
	result.info("Board: %dx%d", config.Rows, config.Cols)
	result.info("Limits: %d kittens, %d cats", config.KittenLimit, config.CatLimit)
	result.info("Starting pool: %d kittens, %d cats", config.StartingKittens, config.StartingCats)
	result.info("First player: %v", config.FirstPlayer)
	result.info("Smoke test: %d random matches consistent", smokeMatches)
	return result
}

// smokeTest plays seeded random matches and checks consistency after every
// placement
func smokeTest(config *engine.GameConfig, matches int) error {
	rng := rand.New(rand.NewSource(1))

	for m := 0; m < matches; m++ {
		eng, err := engine.NewEngine(config)
		if err != nil {
			return err
		}

		for move := 0; move < 500 && !eng.IsGameOver(); move++ {
			row, col, pieceType, ok := randomMove(eng, rng)
			if !ok {
				break
			}

			result := eng.PlacePiece(row, col, pieceType)
			if !result.Success {
				return fmt.Errorf("match %d move %d: legal placement rejected: %s", m+1, move+1, result.Reason)
			}
			if err := eng.GetState().CheckConsistency(); err != nil {
				return fmt.Errorf("match %d move %d: %w", m+1, move+1, err)
			}
		}
	}
	return nil
}

// randomMove picks an empty cell and a piece the current player still holds
func randomMove(eng *engine.GameEngine, rng *rand.Rand) (int, int, engine.PieceType, bool) {
	player := eng.CurrentPlayer()

	var pieces []engine.PieceType
	for _, t := range []engine.PieceType{engine.Kitten, engine.Cat} {
		if eng.GetAvailablePawns(player, t) > 0 {
			pieces = append(pieces, t)
		}
	}
	if len(pieces) == 0 {
		return 0, 0, "", false
	}

	board := eng.Snapshot().Board
	var empty []engine.Coordinate
	for r, row := range board {
		for c, p := range row {
			if p == nil {
				empty = append(empty, engine.Coordinate{Row: r, Col: c})
			}
		}
	}
	if len(empty) == 0 {
		return 0, 0, "", false
	}

	cell := empty[rng.Intn(len(empty))]
	return cell.Row, cell.Col, pieces[rng.Intn(len(pieces))], true
}

// configFiles lists every config file in dir, sorted by name
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates each config file, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
