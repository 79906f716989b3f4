package engine

import "fmt"

// CountBullsAndCows scores guess against secret.
//
// Bulls are counted first, position by position; every bull consumes its
// secret and guess position. Cows are then counted for each remaining guess
// symbol, in order, consuming one remaining occurrence of the same symbol in
// the secret. The result is an exact multiset match, so repeated symbols are
// never counted twice.
func CountBullsAndCows(secret, guess Code) (Score, error) {
	if len(secret) != len(guess) {
		return Score{}, fmt.Errorf("%w: code has %d symbols, guess has %d", ErrLengthMismatch, len(secret), len(guess))
	}

	var score Score
	remaining := make(map[Symbol]int, len(secret))
	unmatched := make([]Symbol, 0, len(guess))

	for i := range guess {
		if guess[i] == secret[i] {
			score.Bulls++
			continue
		}
		remaining[secret[i]]++
		unmatched = append(unmatched, guess[i])
	}

	for _, s := range unmatched {
		if remaining[s] > 0 {
			score.Cows++
			remaining[s]--
		}
	}

	return score, nil
}
