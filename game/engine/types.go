package engine

import (
	"errors"
	"strings"
)

// Symbol is a single code value, typically a color name
type Symbol string

// Code is an ordered sequence of symbols
type Code []Symbol

// Status represents the overall state of a game
type Status string

const (
	Running Status = "running"
	Won     Status = "won"
	Lost    Status = "lost"

	// Defaults used by DefaultConfig
	DefaultCodeLength  = 4
	DefaultMaxAttempts = 10
	DefaultBlank       = Symbol("")

	// Validation constants
	MaxCodeLength   = 16
	MaxAlphabetSize = 64
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrLengthMismatch = errors.New("guess length does not match code length")
	ErrInvalidSymbol  = errors.New("symbol is not in the alphabet")
	ErrConfigNotFound = errors.New("configuration not found")
)

// DefaultAlphabet returns the classic six colors plus the blank symbol
func DefaultAlphabet() []Symbol {
	return []Symbol{"red", "blue", "green", "yellow", "purple", "black", DefaultBlank}
}

// Score is the feedback for a single guess
type Score struct {
	Bulls int `json:"bulls"` // right symbol, right position
	Cows  int `json:"cows"`  // right symbol, wrong position
}

// GameConfig represents the rules of a game, loaded from JSON
type GameConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Alphabet    []Symbol `json:"alphabet"`
	Blank       Symbol   `json:"blank"`
	CodeLength  int      `json:"code_length"`
	MaxAttempts int      `json:"max_attempts"`
}

// GameState is a read-only snapshot of the engine counters
type GameState struct {
	CodeLength  int    `json:"code_length"`
	MaxAttempts int    `json:"max_attempts"`
	Attempts    int    `json:"attempts"`
	LastGuess   Code   `json:"last_guess,omitempty"`
	LastScore   Score  `json:"last_score"`
	Status      Status `json:"status"`
}

// Clone returns a copy of the code that does not share its backing array
func (c Code) Clone() Code {
	if c == nil {
		return nil
	}
	out := make(Code, len(c))
	copy(out, c)
	return out
}

// String renders the code as a comma separated list, with blanks shown as "_"
func (c Code) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		if s == "" {
			parts[i] = "_"
			continue
		}
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// ParseCode builds a code from plain strings
func ParseCode(values ...string) Code {
	code := make(Code, len(values))
	for i, v := range values {
		code[i] = Symbol(v)
	}
	return code
}
