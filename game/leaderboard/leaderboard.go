package leaderboard

import (
	"errors"
	"slices"
)

// MaxEntries is the number of entries kept on the board
const MaxEntries = 5

var ErrPersistence = errors.New("leaderboard persistence error")

// Entry is a single winning result. Score is the number of attempts used;
// lower is better.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Rank places entry ahead of previous, sorts ascending by score and keeps
// the top MaxEntries. The sort is stable, so a new entrant ties ahead of
// existing entries with the same score.
func Rank(entry Entry, previous []Entry) []Entry {
	ranked := make([]Entry, 0, len(previous)+1)
	ranked = append(ranked, entry)
	ranked = append(ranked, previous...)

	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return a.Score - b.Score
	})

	if len(ranked) > MaxEntries {
		ranked = ranked[:MaxEntries]
	}
	return ranked
}
