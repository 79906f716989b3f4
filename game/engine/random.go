package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// RandomSource supplies uniform integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewSeededSource returns a deterministic source, useful for tests and replays
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a source seeded from the wall clock
func NewRandomSource() RandomSource {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// GenerateCode draws length symbols independently and uniformly from alphabet.
// Repetition and blanks are allowed.
func GenerateCode(src RandomSource, alphabet []Symbol, length int) (Code, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: code length must be positive, got %d", ErrInvalidConfig, length)
	}
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: alphabet cannot be empty", ErrInvalidConfig)
	}
	if src == nil {
		src = NewRandomSource()
	}

	code := make(Code, length)
	for i := range code {
		code[i] = alphabet[src.IntN(len(alphabet))]
	}
	return code, nil
}
