// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. Without arguments every file is
// analyzed; otherwise each argument names a config. It validates each file and
// summarizes the size of the code space, the number of distinct scores a
// guess can receive, and a lower bound on the guesses needed to pin down
// any code, warning when the attempt budget is below that bound.
package main

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mastermind/game/engine"
)

// Analysis holds the derived numbers for one config file
type Analysis struct {
	File         string
	Config       *engine.GameConfig
	Err          error
	CodeSpace    *big.Int
	Outcomes     int
	MinGuesses   int
	RandomWinPct float64
}

func main() {
	if len(os.Args) > 1 {
		for _, name := range os.Args[1:] {
			report(os.Stdout, analyzeNamed(name))
		}
		return
	}

	files, err := configFiles("configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configs: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		report(os.Stdout, analyzeConfig(file))
	}
}

// configFiles lists the .json files in dir in name order
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func analyzeConfig(path string) *Analysis {
	config, err := engine.LoadGameConfig(path)
	return analyze(filepath.Base(path), config, err)
}

// analyzeNamed resolves name against the configs directory
func analyzeNamed(name string) *Analysis {
	config, err := engine.LoadConfigByName(name)
	return analyze(name, config, err)
}

func analyze(file string, config *engine.GameConfig, err error) *Analysis {
	a := &Analysis{File: file, Config: config, Err: err}
	if err != nil {
		return a
	}

	a.CodeSpace = codeSpace(len(config.Alphabet), config.CodeLength)
	a.Outcomes = feedbackOutcomes(config.CodeLength)
	a.MinGuesses = minGuesses(a.CodeSpace, a.Outcomes)
	a.RandomWinPct = randomWinChance(a.CodeSpace, config.MaxAttempts) * 100
	return a
}

// codeSpace returns symbols^length
func codeSpace(symbols, length int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(symbols)), big.NewInt(int64(length)), nil)
}

// feedbackOutcomes counts the distinct (bulls, cows) scores for a code of
// the given length. Any pair with bulls+cows <= length is possible except
// length-1 bulls with one cow.
func feedbackOutcomes(length int) int {
	outcomes := (length + 1) * (length + 2) / 2
	if length > 0 {
		outcomes--
	}
	return outcomes
}

// minGuesses is the information-theoretic lower bound on the guesses needed
// to identify every code in the worst case, counting the final winning guess.
func minGuesses(space *big.Int, outcomes int) int {
	if space.Cmp(big.NewInt(1)) <= 0 {
		return 1
	}
	if outcomes < 2 {
		return math.MaxInt
	}

	guesses := 0
	reach := big.NewInt(1)
	base := big.NewInt(int64(outcomes))
	for reach.Cmp(space) < 0 {
		reach.Mul(reach, base)
		guesses++
	}
	return guesses
}

// randomWinChance is the probability of hitting the code by guessing
// distinct codes at random within the attempt budget
func randomWinChance(space *big.Int, attempts int) float64 {
	ratio := new(big.Float).Quo(new(big.Float).SetInt64(int64(attempts)), new(big.Float).SetInt(space))
	p, _ := ratio.Float64()
	return math.Min(p, 1)
}

func report(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.File)
	if a.Err != nil {
		fmt.Fprintf(w, "❌ Invalid: %v\n", a.Err)
		return
	}

	c := a.Config
	symbols := make([]string, len(c.Alphabet))
	for i, s := range c.Alphabet {
		symbols[i] = string(s)
		if s == "" {
			symbols[i] = "_"
		}
	}

	fmt.Fprintf(w, "Name: %s\n", c.Name)
	fmt.Fprintf(w, "Alphabet (%d): %s\n", len(c.Alphabet), strings.Join(symbols, " "))
	fmt.Fprintf(w, "Code Length: %d\n", c.CodeLength)
	fmt.Fprintf(w, "Max Attempts: %d\n", c.MaxAttempts)
	fmt.Fprintf(w, "Possible Codes: %s\n", a.CodeSpace.String())
	fmt.Fprintf(w, "Distinct Scores per Guess: %d\n", a.Outcomes)
	fmt.Fprintf(w, "Guesses Needed (lower bound): %d\n", a.MinGuesses)
	fmt.Fprintf(w, "Random Play Win Chance: %.4g%%\n", a.RandomWinPct)

	if a.MinGuesses > c.MaxAttempts {
		fmt.Fprintf(w, "⚠️  WARNING: some codes cannot be found within %d attempts\n", c.MaxAttempts)
	} else {
		fmt.Fprintf(w, "✅ Attempt budget allows solving every code\n")
	}
}
