package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Code management
	GenerateCode(length int) error
	SetCode(code Code) error
	SecretLength() int
	SecretCode() Code

	// Turns
	Score(guess Code) (Score, error)
	CheckStatus() Status
	Restart() error

	// State
	GetState() *GameState
	GetAttempts() int
	GetMaxAttempts() int
	GetLastScore() Score
	GetLastGuess() Code

	// Configuration
	GetConfig() *GameConfig
	GetAlphabet() []Symbol
	GetBlank() Symbol
	Contains(symbol Symbol) bool
}

// GameEngine implements the Engine interface
type GameEngine struct {
	config    *GameConfig
	src       RandomSource
	index     map[Symbol]struct{}
	code      Code
	lastGuess Code
	attempts  int
	bulls     int
	cows      int
}

// NewEngine creates an engine with an empty secret code.
// A nil src falls back to a time-seeded source.
func NewEngine(config *GameConfig, src RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewRandomSource()
	}

	index := make(map[Symbol]struct{}, len(config.Alphabet))
	for _, s := range config.Alphabet {
		index[s] = struct{}{}
	}

	return &GameEngine{
		config: config,
		src:    src,
		index:  index,
		code:   Code{},
	}, nil
}

// NewGame creates an engine and draws a secret of config.CodeLength symbols
func NewGame(config *GameConfig, src RandomSource) (*GameEngine, error) {
	e, err := NewEngine(config, src)
	if err != nil {
		return nil, err
	}
	if err := e.GenerateCode(config.CodeLength); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a ready-to-play engine using DefaultConfig
func NewEngineWithDefaults() *GameEngine {
	e, err := NewGame(DefaultConfig(), nil)
	if err != nil {
		// DefaultConfig is always valid
		panic(err)
	}
	return e
}

// GenerateCode replaces the secret with length freshly drawn symbols
func (e *GameEngine) GenerateCode(length int) error {
	code, err := GenerateCode(e.src, e.config.Alphabet, length)
	if err != nil {
		return err
	}
	e.code = code
	return nil
}

// SetCode installs a known secret (used for replays and tests)
func (e *GameEngine) SetCode(code Code) error {
	if len(code) == 0 {
		return fmt.Errorf("%w: code cannot be empty", ErrInvalidConfig)
	}
	for i, s := range code {
		if !e.Contains(s) {
			return fmt.Errorf("%w: %q at position %d", ErrInvalidSymbol, s, i)
		}
	}
	e.code = code.Clone()
	return nil
}

// SecretLength returns the length of the current secret code
func (e *GameEngine) SecretLength() int {
	return len(e.code)
}

// SecretCode returns a copy of the current secret code
func (e *GameEngine) SecretCode() Code {
	return e.code.Clone()
}

// Score records guess as the next attempt and returns its bulls and cows.
// Once the attempt budget is spent the call is a no-op and the previous
// score is returned.
func (e *GameEngine) Score(guess Code) (Score, error) {
	if len(guess) != len(e.code) {
		return e.GetLastScore(), fmt.Errorf("%w: code has %d symbols, guess has %d", ErrLengthMismatch, len(e.code), len(guess))
	}
	if e.attempts >= e.config.MaxAttempts {
		return e.GetLastScore(), nil
	}

	score, err := CountBullsAndCows(e.code, guess)
	if err != nil {
		return e.GetLastScore(), err
	}

	e.attempts++
	e.lastGuess = guess.Clone()
	e.bulls, e.cows = score.Bulls, score.Cows
	return score, nil
}

// CheckStatus reports whether the game is won, lost or still running.
// The win check runs first, so a full match on the final allowed attempt
// is a win. An engine with no secret yet is always running.
func (e *GameEngine) CheckStatus() Status {
	length := len(e.code)
	if length == 0 {
		return Running
	}
	if e.attempts <= e.config.MaxAttempts && e.bulls == length {
		return Won
	}
	if e.attempts == e.config.MaxAttempts && e.bulls < length {
		return Lost
	}
	return Running
}

// Restart draws a new secret of the same length and resets all counters
func (e *GameEngine) Restart() error {
	length := len(e.code)
	if length == 0 {
		length = e.config.CodeLength
	}
	if err := e.GenerateCode(length); err != nil {
		return err
	}
	e.lastGuess = nil
	e.attempts, e.bulls, e.cows = 0, 0, 0
	return nil
}

// GetState returns a snapshot of the engine counters
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		CodeLength:  len(e.code),
		MaxAttempts: e.config.MaxAttempts,
		Attempts:    e.attempts,
		LastGuess:   e.lastGuess.Clone(),
		LastScore:   e.GetLastScore(),
		Status:      e.CheckStatus(),
	}
}

// GetAttempts returns the number of scored guesses
func (e *GameEngine) GetAttempts() int {
	return e.attempts
}

// GetMaxAttempts returns the attempt budget
func (e *GameEngine) GetMaxAttempts() int {
	return e.config.MaxAttempts
}

// GetLastScore returns the score of the most recent guess
func (e *GameEngine) GetLastScore() Score {
	return Score{Bulls: e.bulls, Cows: e.cows}
}

// GetLastGuess returns the most recent scored guess, or nil
func (e *GameEngine) GetLastGuess() Code {
	return e.lastGuess.Clone()
}

// GetConfig returns the engine configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetAlphabet returns a copy of the symbol alphabet
func (e *GameEngine) GetAlphabet() []Symbol {
	out := make([]Symbol, len(e.config.Alphabet))
	copy(out, e.config.Alphabet)
	return out
}

// GetBlank returns the alphabet's blank symbol
func (e *GameEngine) GetBlank() Symbol {
	return e.config.Blank
}

// Contains reports whether symbol belongs to the alphabet
func (e *GameEngine) Contains(symbol Symbol) bool {
	_, ok := e.index[symbol]
	return ok
}
