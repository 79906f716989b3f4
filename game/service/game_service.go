package service

import (
	"context"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, playerName, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	PlaceSymbol(ctx context.Context, sessionID string, index int, symbol engine.Symbol) (*SessionInfo, error)
	ClearSlot(ctx context.Context, sessionID string, index int) (*SessionInfo, error)
	FinalizeTurn(ctx context.Context, sessionID string) (*TurnResult, error)
	SubmitGuess(ctx context.Context, sessionID string, guess []engine.Symbol) (*TurnResult, error)
	Restart(ctx context.Context, sessionID string) (*SessionInfo, error)

	// Game State
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, playerName string, config *engine.GameConfig) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() []*session.Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Leaderboard() *leaderboard.Store
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}
