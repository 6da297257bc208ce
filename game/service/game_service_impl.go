package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/boop-game/game/engine"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var (
	// ErrSessionNotFound is returned by SessionManager implementations for unknown IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned by ConfigManager implementations for unknown names
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrInvalidPieceType is returned when a piece type cannot be parsed
	ErrInvalidPieceType = errors.New("invalid piece type")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// persist saves a session after a mutation; failures are logged, not returned
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithFields(log.Fields{
			"session": sessionID,
			"after":   after,
		}).WithError(err).Warn("failed to persist session")
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{
		"session": sess.ID,
		"config":  config.Name,
		"match":   sess.Engine.GetState().MatchID(),
	}).Info("session created")

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// SelectPiece arms a piece type for the session's current player
func (s *gameServiceImpl) SelectPiece(ctx context.Context, sessionID string, player engine.Player, pieceType engine.PieceType) (*SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if !pieceType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPieceType, pieceType)
	}

	eng := sess.Engine
	result := &SelectResult{
		Success:   eng.SelectPiece(player, pieceType),
		Player:    player,
		PieceType: pieceType,
	}

	switch {
	case result.Success:
		result.Message = fmt.Sprintf("%v selected %s", player, pieceType)
	case eng.IsGameOver():
		result.Message = fmt.Sprintf("Game over: %v has won", eng.Winner())
	case player != eng.CurrentPlayer():
		result.Message = fmt.Sprintf("It is %v's turn", eng.CurrentPlayer())
	default:
		result.Message = fmt.Sprintf("%v has no %s left", player, pieceType)
	}

	result.GameState = eng.Snapshot()
	s.persist(sessionID, "select")
	return result, nil
}

// Place puts a piece for the current player. An empty pieceType places the
// previously selected piece.
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, row, col int, pieceType engine.PieceType) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	var turn *engine.TurnResult
	if pieceType == "" {
		turn = eng.Place(row, col)
	} else {
		turn = eng.PlacePiece(row, col, pieceType)
	}

	result := &PlaceResult{
		Success:   turn.Success,
		Reason:    turn.Reason,
		Message:   describeTurn(turn, row, col),
		Turn:      turn,
		GameState: eng.Snapshot(),
	}

	fields := log.Fields{
		"session": sessionID,
		"player":  turn.Player,
		"row":     row,
		"col":     col,
	}
	if !turn.Success {
		log.WithFields(fields).WithField("reason", turn.Reason).Debug("placement rejected")
		return result, nil
	}

	log.WithFields(fields).WithFields(log.Fields{
		"piece":      turn.PieceType,
		"boops":      len(turn.Boops),
		"promotions": len(turn.Promotions) + len(turn.OpponentPromotions),
	}).Debug("piece placed")
	if turn.Winner != nil {
		log.WithFields(log.Fields{"session": sessionID, "winner": *turn.Winner}).Info("match won")
	}

	s.persist(sessionID, "place")
	return result, nil
}

// describeTurn renders a one-line summary of a turn
func describeTurn(turn *engine.TurnResult, row, col int) string {
	if !turn.Success {
		switch turn.Reason {
		case engine.ReasonGameOver:
			return "Game is over; reset to play again"
		case engine.ReasonOutOfBounds:
			return fmt.Sprintf("(%d,%d) is outside the board", row, col)
		case engine.ReasonCellOccupied:
			return fmt.Sprintf("(%d,%d) is already occupied", row, col)
		case engine.ReasonNoInventory:
			return fmt.Sprintf("%v has no %s left", turn.Player, turn.PieceType)
		case engine.ReasonNoPieceSelected:
			return "Select a piece before placing"
		case engine.ReasonInvalidPiece:
			return fmt.Sprintf("Unknown piece type %q", turn.PieceType)
		}
		return "Placement rejected"
	}

	msg := fmt.Sprintf("%v placed %s at (%d,%d)", turn.Player, turn.PieceType, row, col)
	if n := len(turn.Boops); n > 0 {
		msg += fmt.Sprintf(", booped %d", n)
	}
	if n := len(turn.Promotions) + len(turn.OpponentPromotions); n > 0 {
		msg += fmt.Sprintf(", promoted %d kittens", n)
	}
	if turn.Winner != nil {
		msg += fmt.Sprintf(". %v wins!", *turn.Winner)
	}
	return msg
}

// Reset starts a new match in the session with the same configuration
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	snap := sess.Engine.Reset()

	log.WithFields(log.Fields{"session": sessionID, "match": snap.MatchID}).Info("match reset")
	s.persist(sessionID, "reset")
	return snap, nil
}

// GetGameState retrieves the current match snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.Snapshot(), nil
}

// GetHistory returns the paginated event log
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}

	history := sess.Engine.GetHistory()
	if opts.Action != "" {
		filtered := make([]engine.Event, 0, len(history))
		for _, ev := range history {
			if ev.Action == opts.Action {
				filtered = append(filtered, ev)
			}
		}
		history = filtered
	}
	return paginate(history, opts), nil
}

func paginate(history []engine.Event, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	events := []engine.Event{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	log.WithField("config", configName).Info("config saved")
	return nil
}
