package service

import (
	"time"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/session"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	PlayerName     string             `json:"player_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          *session.Snapshot  `json:"state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// TurnResult contains the outcome of a finalized turn
type TurnResult struct {
	Guess    engine.Code       `json:"guess"`
	Score    engine.Score      `json:"score"`
	Status   engine.Status     `json:"status"`
	Round    int               `json:"round"`
	Attempts int               `json:"attempts"`
	Applied  bool              `json:"applied"`          // false when the game had already ended
	Secret   engine.Code       `json:"secret,omitempty"` // revealed once the game is over
	Message  string            `json:"message"`
	Events   []GameEvent       `json:"events,omitempty"`
	State    *session.Snapshot `json:"state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "turn", "won", "lost", "restart"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []session.Turn `json:"turns"`
	TotalTurns  int            `json:"total_turns"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	CodeLength   int    `json:"code_length"`
	MaxAttempts  int    `json:"max_attempts"`
	AlphabetSize int    `json:"alphabet_size"`
}
