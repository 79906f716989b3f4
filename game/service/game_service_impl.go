package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.With().Str("component", "service").Logger(),
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
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *session.Session, configID string) *SessionInfo {
	config := sess.Engine().GetConfig()
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		PlayerName:     sess.PlayerName(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Snapshot(),
		GameConfig:     config,
	}
}

// getSession looks up a session and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, playerName, configName string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", playerName, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	SessionsCreated.Inc()
	s.logger.Info().Str("session", sess.ID).Str("player", playerName).Str("config", config.Name).Msg("session created")

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Marking the session as accessed writes to it
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

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
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// PlaceSymbol puts symbol into one slot of the session's guess
func (s *gameServiceImpl) PlaceSymbol(ctx context.Context, sessionID string, index int, symbol engine.Symbol) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetGuessSlot(symbol, index); err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ClearSlot empties one slot of the session's guess
func (s *gameServiceImpl) ClearSlot(ctx context.Context, sessionID string, index int) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ClearGuessSlot(index); err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// FinalizeTurn scores the guess currently in the session's buffer
func (s *gameServiceImpl) FinalizeTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.finalize(sess)
}

// SubmitGuess fills every slot with guess and finalizes the turn.
// The guess is validated as a whole before any slot is touched.
func (s *gameServiceImpl) SubmitGuess(ctx context.Context, sessionID string, guess []engine.Symbol) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if len(guess) != sess.GetSecretLength() {
		return nil, fmt.Errorf("%w: code has %d symbols, guess has %d", engine.ErrLengthMismatch, sess.GetSecretLength(), len(guess))
	}
	for i, sym := range guess {
		if !sess.Engine().Contains(sym) {
			return nil, fmt.Errorf("%w: %q at position %d", engine.ErrInvalidSymbol, sym, i)
		}
	}
	if sess.GetStatus() == engine.Running {
		for i, sym := range guess {
			if err := sess.SetGuessSlot(sym, i); err != nil {
				return nil, err
			}
		}
	}

	return s.finalize(sess)
}

func (s *gameServiceImpl) finalize(sess *session.Session) (*TurnResult, error) {
	before := sess.GetAttempts()
	wasRunning := sess.GetStatus() == engine.Running

	err := sess.FinalizeTurn()
	if err != nil && !errors.Is(err, leaderboard.ErrPersistence) {
		return nil, err
	}

	status := sess.GetStatus()
	result := &TurnResult{
		Score:    sess.GetLastScore(),
		Status:   status,
		Round:    sess.GetCurrentRound(),
		Attempts: sess.GetAttempts(),
		Applied:  wasRunning && sess.GetAttempts() > before,
		State:    sess.Snapshot(),
	}
	if history := sess.GetHistory(); len(history) > 0 {
		result.Guess = history[len(history)-1].Guess
	}
	if secret, ok := sess.RevealSecret(); ok {
		result.Secret = secret
	}

	now := time.Now()
	if result.Applied {
		TurnsFinalized.WithLabelValues(string(status)).Inc()
		result.Events = append(result.Events, GameEvent{
			Type:      "turn",
			Message:   fmt.Sprintf("Attempt %d: %d bulls, %d cows", result.Attempts, result.Score.Bulls, result.Score.Cows),
			Timestamp: now,
		})
	}

	switch {
	case !result.Applied:
		result.Message = fmt.Sprintf("Game already %s. Restart to play again.", status)
	case status == engine.Won:
		GamesFinished.WithLabelValues("won").Inc()
		result.Message = fmt.Sprintf("You cracked the code in %d attempts!", result.Attempts)
		result.Events = append(result.Events, GameEvent{Type: "won", Message: result.Message, Timestamp: now})
	case status == engine.Lost:
		GamesFinished.WithLabelValues("lost").Inc()
		result.Message = fmt.Sprintf("Out of attempts. The code was %s.", result.Secret)
		result.Events = append(result.Events, GameEvent{Type: "lost", Message: result.Message, Timestamp: now})
	default:
		remaining := sess.Engine().GetMaxAttempts() - result.Attempts
		result.Message = fmt.Sprintf("%d bulls, %d cows. %d attempts left.", result.Score.Bulls, result.Score.Cows, remaining)
	}

	if err != nil {
		LeaderboardErrors.Inc()
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("win not recorded on leaderboard")
		return nil, err
	}
	return result, nil
}

// Restart begins a new game in the same session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Restart(); err != nil {
		return nil, fmt.Errorf("failed to restart: %w", err)
	}
	return s.sessionInfo(sess, ""), nil
}

// GetHistory returns paginated turn history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Marking the session as accessed writes to it
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
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

	turns := []session.Turn{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetLeaderboard returns the shared top-5 board
func (s *gameServiceImpl) GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	board := s.sessions.Leaderboard()
	if board == nil {
		return []leaderboard.Entry{}, nil
	}
	entries, err := board.LoadTop5()
	if err != nil {
		LeaderboardErrors.Inc()
		return nil, err
	}
	return entries, nil
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
	return s.configs.SaveConfig(configName, config)
}
