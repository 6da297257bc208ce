package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig holds the match parameters fixed at match start
type GameConfig struct {
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	Rows            int    `json:"rows" yaml:"rows"`
	Cols            int    `json:"cols" yaml:"cols"`
	KittenLimit     int    `json:"kitten_limit" yaml:"kitten_limit"`
	CatLimit        int    `json:"cat_limit" yaml:"cat_limit"`
	StartingKittens int    `json:"starting_kittens" yaml:"starting_kittens"`
	StartingCats    int    `json:"starting_cats" yaml:"starting_cats"`
	FirstPlayer     Player `json:"first_player" yaml:"first_player"`
}

// DefaultGameConfig returns the classic 6x6 setup
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:            "classic",
		Description:     "Classic 6x6 board, 8 kittens per player",
		Rows:            DefaultRows,
		Cols:            DefaultCols,
		KittenLimit:     DefaultPieceLimit,
		CatLimit:        DefaultPieceLimit,
		StartingKittens: DefaultPieceLimit,
		StartingCats:    0,
		FirstPlayer:     PlayerOne,
	}
}

// Limit returns the per-player cap for a piece type
func (c *GameConfig) Limit(t PieceType) int {
	if t == Cat {
		return c.CatLimit
	}
	return c.KittenLimit
}

// Starting returns the initial pool size for a piece type
func (c *GameConfig) Starting(t PieceType) int {
	if t == Cat {
		return c.StartingCats
	}
	return c.StartingKittens
}

// ApplyDefaults fills zero-valued fields with the classic values
func (c *GameConfig) ApplyDefaults() {
	if c.Rows == 0 {
		c.Rows = DefaultRows
	}
	if c.Cols == 0 {
		c.Cols = DefaultCols
	}
	if c.KittenLimit == 0 {
		c.KittenLimit = DefaultPieceLimit
	}
	if c.CatLimit == 0 {
		c.CatLimit = DefaultPieceLimit
	}
	if c.StartingKittens == 0 && c.StartingCats == 0 {
		c.StartingKittens = c.KittenLimit
	}
	if c.FirstPlayer == NoPlayer {
		c.FirstPlayer = PlayerOne
	}
}

// ValidateGameConfig checks a configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if config.Rows < MinBoardSize || config.Rows > MaxBoardSize {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidConfig, MinBoardSize, MaxBoardSize, config.Rows)
	}
	if config.Cols < MinBoardSize || config.Cols > MaxBoardSize {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidConfig, MinBoardSize, MaxBoardSize, config.Cols)
	}

	for _, t := range PieceTypes {
		limit := config.Limit(t)
		if limit < MinLimit || limit > MaxLimit {
			return fmt.Errorf("%w: %s limit must be between %d and %d, got %d", ErrInvalidConfig, strings.ToLower(string(t)), MinLimit, MaxLimit, limit)
		}
		if start := config.Starting(t); start < 0 || start > limit {
			return fmt.Errorf("%w: starting %s count must be between 0 and %d, got %d", ErrInvalidConfig, strings.ToLower(string(t)), limit, start)
		}
	}
	if config.StartingKittens+config.StartingCats == 0 {
		return fmt.Errorf("%w: players must start with at least one piece", ErrInvalidConfig)
	}

	if !config.FirstPlayer.Valid() {
		return fmt.Errorf("%w: first_player must be 1 or 2, got %d", ErrInvalidConfig, int(config.FirstPlayer))
	}

	return nil
}

// ParseGameConfig decodes JSON or YAML (chosen by file extension), applies
// defaults and validates the result
func ParseGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	config.ApplyDefaults()
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data, filepath.Ext(filename))
}
