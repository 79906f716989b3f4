package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/service"
)

const playHelp = `Enter a guess as symbols separated by spaces or commas, "_" for blank.
Commands: history, leaderboard, restart, help, quit`

// runPlay runs an interactive game reading guesses from in until EOF or quit
func runPlay(ctx context.Context, gameService service.GameService, in io.Reader, out io.Writer, player, configName string) error {
	info, err := gameService.CreateSession(ctx, player, configName)
	if err != nil {
		return err
	}
	rules := info.GameConfig

	alphabet := make([]string, len(rules.Alphabet))
	for i, s := range rules.Alphabet {
		alphabet[i] = displaySymbol(s, rules.Blank)
	}

	fmt.Fprintf(out, "Mastermind (%s): find the %d-symbol code in %d attempts.\n", info.ConfigName, rules.CodeLength, rules.MaxAttempts)
	fmt.Fprintf(out, "Symbols: %s\n%s\n\n", strings.Join(alphabet, " "), playHelp)

	round := 1
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%d/%d] > ", round, rules.MaxAttempts)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue

		case "quit", "exit":
			return nil

		case "help", "?":
			fmt.Fprintln(out, playHelp)

		case "restart":
			restarted, err := gameService.Restart(ctx, info.ID)
			if err != nil {
				return err
			}
			round = restarted.State.Round
			fmt.Fprintln(out, "New code drawn. Good luck!")

		case "history":
			history, err := gameService.GetHistory(ctx, info.ID, service.HistoryOptions{Page: 1, Limit: 100, Order: "asc"})
			if err != nil {
				return err
			}
			if len(history.Turns) == 0 {
				fmt.Fprintln(out, "No guesses yet.")
			}
			for _, turn := range history.Turns {
				fmt.Fprintf(out, "%2d. %-32s %d bulls, %d cows\n", turn.Round, turn.Guess, turn.Score.Bulls, turn.Score.Cows)
			}

		case "leaderboard":
			entries, err := gameService.GetLeaderboard(ctx)
			if err != nil {
				fmt.Fprintf(out, "Leaderboard unavailable: %v\n", err)
				continue
			}
			printLeaderboard(out, entries)

		default:
			result, err := gameService.SubmitGuess(ctx, info.ID, parseGuess(line, rules.Blank))
			switch {
			case errors.Is(err, leaderboard.ErrPersistence):
				fmt.Fprintf(out, "You won, but the leaderboard could not be saved: %v\n", err)
				continue
			case err != nil:
				switch service.ErrorKind(err) {
				case service.KindInvalidSymbol, service.KindLengthMismatch:
					fmt.Fprintf(out, "Invalid guess: %v\n", err)
					continue
				}
				return err
			}

			round = result.Round
			if result.Applied {
				fmt.Fprintf(out, "%s  bulls: %d  cows: %d\n", strings.Repeat("●", result.Score.Bulls)+strings.Repeat("○", result.Score.Cows), result.Score.Bulls, result.Score.Cows)
			}
			fmt.Fprintln(out, result.Message)
			if result.Status != engine.Running {
				fmt.Fprintln(out, `Type "restart" for a new code or "quit" to leave.`)
			}
		}
	}
}

// parseGuess splits a line on spaces and commas; "_" stands for the blank symbol
func parseGuess(line string, blank engine.Symbol) engine.Code {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	code := make(engine.Code, len(fields))
	for i, f := range fields {
		if f == "_" {
			code[i] = blank
			continue
		}
		code[i] = engine.Symbol(f)
	}
	return code
}

func displaySymbol(s, blank engine.Symbol) string {
	if s == blank || s == "" {
		return "_"
	}
	return string(s)
}

// printLeaderboard writes the ranked entries, fewest attempts first
func printLeaderboard(w io.Writer, entries []leaderboard.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Leaderboard is empty.")
		return
	}

	fmt.Fprintln(w, "Rank  Name              Attempts")
	for i, entry := range entries {
		name := entry.Name
		if name == "" {
			name = "(anonymous)"
		}
		fmt.Fprintf(w, "%4d  %-16s  %8d\n", i+1, name, entry.Score)
	}
}
