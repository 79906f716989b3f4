package leaderboard

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Store reads and rewrites a flat leaderboard file.
//
// The file holds alternating name and score lines, one pair per entry, with
// no header. A missing file is an empty board and is created on first load.
// Load-merge-persist runs under a mutex, and writes replace the file with an
// atomic rename so readers never observe a partial board. Writers in other
// processes are not coordinated.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the leaderboard file at path.
// The parent directory is created if it does not exist.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrPersistence)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create leaderboard directory: %v", ErrPersistence, err)
		}
	}

	return &Store{path: path}, nil
}

// Path returns the leaderboard file path
func (s *Store) Path() string {
	return s.path
}

// LoadTop5 returns the entries currently on the board
func (s *Store) LoadTop5() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// AppendAndPersist ranks entry against the stored board, writes the new top
// entries back and returns them
func (s *Store) AppendAndPersist(entry Entry) ([]Entry, error) {
	if entry.Score < 0 {
		return nil, fmt.Errorf("%w: score must be non-negative, got %d", ErrPersistence, entry.Score)
	}
	if strings.ContainsAny(entry.Name, "\r\n") {
		return nil, fmt.Errorf("%w: name cannot contain line breaks", ErrPersistence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.load()
	if err != nil {
		return nil, err
	}

	top := Rank(entry, previous)
	if err := s.save(top); err != nil {
		return nil, err
	}
	return top, nil
}

// LoadTop5 reads the leaderboard file at path
func LoadTop5(path string) ([]Entry, error) {
	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	return s.LoadTop5()
}

// AppendAndPersist ranks entry into the leaderboard file at path
func AppendAndPersist(path string, entry Entry) ([]Entry, error) {
	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	return s.AppendAndPersist(entry)
}

// load reads the file, creating an empty one if it is missing
func (s *Store) load() ([]Entry, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		created, createErr := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0644)
		if createErr != nil {
			return nil, fmt.Errorf("%w: failed to create leaderboard file: %v", ErrPersistence, createErr)
		}
		created.Close()
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open leaderboard file: %v", ErrPersistence, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read leaderboard file: %v", ErrPersistence, err)
	}

	return decode(lines)
}

// save writes entries to a temp file next to the board and renames it into place
func (s *Store) save(entries []Entry) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\n%d\n", e.Name, e.Score)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write leaderboard: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close leaderboard: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace leaderboard file: %v", ErrPersistence, err)
	}
	return nil
}

// decode turns alternating name/score lines into entries. Pairs past
// MaxEntries are validated but dropped.
func decode(lines []string) ([]Entry, error) {
	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of lines (%d)", ErrPersistence, len(lines))
	}

	entries := make([]Entry, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		score, err := strconv.Atoi(strings.TrimSpace(lines[i+1]))
		if err != nil || score < 0 {
			return nil, fmt.Errorf("%w: invalid score %q on line %d", ErrPersistence, lines[i+1], i+2)
		}
		entries = append(entries, Entry{Name: lines[i], Score: score})
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}
