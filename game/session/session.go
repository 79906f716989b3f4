package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
)

// MaxPlayerNameLength is the longest accepted player name, in runes
const MaxPlayerNameLength = 16

var (
	ErrIndexOutOfRange = errors.New("guess slot index out of range")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Slot is one position of the guess buffer. An unfilled slot is distinct
// from a slot holding the blank symbol.
type Slot struct {
	Symbol engine.Symbol `json:"symbol"`
	Filled bool          `json:"filled"`
}

// Turn is a finalized guess with its feedback
type Turn struct {
	Round int          `json:"round"`
	Guess engine.Code  `json:"guess"`
	Score engine.Score `json:"score"`
}

// Session is one player's game: the engine, the guess being built, the
// round counter and the turn history. A Session is not safe for concurrent
// use; Manager and the service layer serialize access.
type Session struct {
	ID             string
	CreatedAt      time.Time
	LastAccessedAt time.Time

	engine     *engine.GameEngine
	playerName string
	guess      []Slot
	round      int
	status     engine.Status
	history    []Turn
	board      *leaderboard.Store
	logger     zerolog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLeaderboard records wins on board
func WithLeaderboard(board *leaderboard.Store) Option {
	return func(s *Session) {
		s.board = board
	}
}

// WithID sets the session identifier
func WithID(id string) Option {
	return func(s *Session) {
		s.ID = id
	}
}

// WithLogger replaces the global logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New starts a session around eng, which must already hold a secret code.
// An empty player name plays anonymously.
func New(eng *engine.GameEngine, playerName string, opts ...Option) (*Session, error) {
	if eng == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", ErrInvalidArgument)
	}
	if eng.SecretLength() == 0 {
		return nil, fmt.Errorf("%w: engine has no secret code", ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(playerName); n > MaxPlayerNameLength {
		return nil, fmt.Errorf("%w: player name has %d characters, maximum is %d", ErrInvalidArgument, n, MaxPlayerNameLength)
	}
	if strings.ContainsAny(playerName, "\r\n") {
		return nil, fmt.Errorf("%w: player name cannot contain line breaks", ErrInvalidArgument)
	}

	now := time.Now()
	s := &Session{
		CreatedAt:      now,
		LastAccessedAt: now,
		engine:         eng,
		playerName:     playerName,
		round:          1,
		status:         engine.Running,
		logger:         log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.ID).Logger()
	s.resetGuess()

	return s, nil
}

// SetGuessSlot places symbol into the guess buffer at index
func (s *Session) SetGuessSlot(symbol engine.Symbol, index int) error {
	if index < 0 || index >= len(s.guess) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.guess))
	}
	if !s.engine.Contains(symbol) {
		return fmt.Errorf("%w: %q", engine.ErrInvalidSymbol, symbol)
	}
	s.guess[index] = Slot{Symbol: symbol, Filled: true}
	return nil
}

// ClearGuessSlot empties the guess buffer at index
func (s *Session) ClearGuessSlot(index int) error {
	if index < 0 || index >= len(s.guess) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.guess))
	}
	s.guess[index] = Slot{}
	return nil
}

// LastFilledIndex returns the highest filled slot, or -1 when none is filled
func (s *Session) LastFilledIndex() int {
	for i := len(s.guess) - 1; i >= 0; i-- {
		if s.guess[i].Filled {
			return i
		}
	}
	return -1
}

// FinalizeTurn submits the guess buffer. Unfilled slots are sent as the
// blank symbol. It does nothing once the game is won or lost.
//
// A winning turn is recorded on the leaderboard. If that write fails the
// turn stays applied and the ErrPersistence error is returned.
func (s *Session) FinalizeTurn() error {
	if s.status != engine.Running {
		return nil
	}

	guess := make(engine.Code, len(s.guess))
	for i, slot := range s.guess {
		if slot.Filled {
			guess[i] = slot.Symbol
		} else {
			guess[i] = s.engine.GetBlank()
		}
	}

	before := s.engine.GetAttempts()
	score, err := s.engine.Score(guess)
	if err != nil {
		return err
	}
	s.status = s.engine.CheckStatus()
	if s.engine.GetAttempts() > before {
		s.history = append(s.history, Turn{Round: s.round, Guess: guess, Score: score})
	}
	s.resetGuess()
	s.round++

	s.logger.Debug().
		Int("attempt", s.engine.GetAttempts()).
		Int("bulls", score.Bulls).
		Int("cows", score.Cows).
		Str("status", string(s.status)).
		Msg("turn finalized")

	if s.status != engine.Won {
		return nil
	}

	s.logger.Info().Str("player", s.playerName).Int("attempts", s.engine.GetAttempts()).Msg("game won")
	if s.board == nil {
		return nil
	}
	entry := leaderboard.Entry{Name: s.playerName, Score: s.engine.GetAttempts()}
	if _, err := s.board.AppendAndPersist(entry); err != nil {
		s.logger.Warn().Err(err).Str("path", s.board.Path()).Msg("failed to record win")
		return err
	}
	return nil
}

// Restart begins a new game with a fresh secret of the same length.
// The player name and the leaderboard are kept.
func (s *Session) Restart() error {
	if err := s.engine.Restart(); err != nil {
		return err
	}
	s.round = 1
	s.status = engine.Running
	s.history = nil
	s.resetGuess()
	s.logger.Debug().Msg("game restarted")
	return nil
}

// PlayerName returns the player's display name, which may be empty
func (s *Session) PlayerName() string {
	return s.playerName
}

// Engine returns the underlying game engine
func (s *Session) Engine() *engine.GameEngine {
	return s.engine
}

func (s *Session) GetLastScore() engine.Score {
	return s.engine.GetLastScore()
}

func (s *Session) GetStatus() engine.Status {
	return s.status
}

func (s *Session) GetCurrentRound() int {
	return s.round
}

func (s *Session) GetAttempts() int {
	return s.engine.GetAttempts()
}

func (s *Session) GetSecretLength() int {
	return s.engine.SecretLength()
}

func (s *Session) GetAlphabet() []engine.Symbol {
	return s.engine.GetAlphabet()
}

// GetGuess returns a copy of the guess buffer
func (s *Session) GetGuess() []Slot {
	out := make([]Slot, len(s.guess))
	copy(out, s.guess)
	return out
}

// GetHistory returns the finalized turns of the current game
func (s *Session) GetHistory() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// GetLeaderboardTop5 reads the shared leaderboard. A session without a
// leaderboard reports an empty board.
func (s *Session) GetLeaderboardTop5() ([]leaderboard.Entry, error) {
	if s.board == nil {
		return []leaderboard.Entry{}, nil
	}
	return s.board.LoadTop5()
}

// RevealSecret returns the secret once the game has ended
func (s *Session) RevealSecret() (engine.Code, bool) {
	if s.status == engine.Running {
		return nil, false
	}
	return s.engine.SecretCode(), true
}

// Equal reports whether both sessions carry the same ID
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ID == other.ID
}

// Snapshot is a read-only view of a session for presentation layers
type Snapshot struct {
	ID             string          `json:"id"`
	PlayerName     string          `json:"player_name"`
	Round          int             `json:"round"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"max_attempts"`
	CodeLength     int             `json:"code_length"`
	Status         engine.Status   `json:"status"`
	LastScore      engine.Score    `json:"last_score"`
	Guess          []Slot          `json:"guess"`
	Alphabet       []engine.Symbol `json:"alphabet"`
	History        []Turn          `json:"history"`
	Secret         engine.Code     `json:"secret,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// Snapshot captures the current session state. The secret is included only
// after the game has ended.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:             s.ID,
		PlayerName:     s.playerName,
		Round:          s.round,
		Attempts:       s.engine.GetAttempts(),
		MaxAttempts:    s.engine.GetMaxAttempts(),
		CodeLength:     s.engine.SecretLength(),
		Status:         s.status,
		LastScore:      s.engine.GetLastScore(),
		Guess:          s.GetGuess(),
		Alphabet:       s.engine.GetAlphabet(),
		History:        s.GetHistory(),
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}
	if secret, ok := s.RevealSecret(); ok {
		snap.Secret = secret
	}
	return snap
}

func (s *Session) resetGuess() {
	s.guess = make([]Slot, s.engine.SecretLength())
}
