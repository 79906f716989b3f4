package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/transport/mcp"
	"github.com/wricardo/mastermind/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Mastermind" {
		t.Errorf("Expected app name Mastermind, got %s", AppName)
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	if err := setupLogging("debug", false, &buf); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", zerolog.GlobalLevel())
	}

	if err := setupLogging("pretty", true, &buf); err == nil {
		t.Error("Expected error for unknown log level")
	}
	if err := setupLogging("warn", true, io.Discard); err != nil {
		t.Errorf("Pretty logging should be accepted: %v", err)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	services, err := initializeServices("configs", filepath.Join(t.TempDir(), "board.txt"))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if services.Game == nil || services.Sessions == nil || services.Board == nil {
		t.Fatal("Expected all services to be initialized")
	}

	info, err := services.Game.CreateSession(context.Background(), "ann", "")
	if err != nil {
		t.Fatalf("CreateSession with default config failed: %v", err)
	}
	if info.ConfigName == "" || info.State.CodeLength != engine.DefaultCodeLength {
		t.Errorf("Expected classic default rules, got %+v", info)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", filepath.Join(t.TempDir(), "board.txt")); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_InvalidLeaderboard(t *testing.T) {
	if _, err := initializeServices(t.TempDir(), ""); err == nil {
		t.Error("Expected error for empty leaderboard path")
	}
}

func TestParseGuess(t *testing.T) {
	tests := []struct {
		line     string
		blank    engine.Symbol
		expected engine.Code
	}{
		{"red blue green yellow", "", engine.ParseCode("red", "blue", "green", "yellow")},
		{"red,blue, _ ,black", "", engine.ParseCode("red", "blue", "", "black")},
		{"1 _ 3", "0", engine.ParseCode("1", "0", "3")},
		{"   ", "", engine.Code{}},
	}

	for _, tt := range tests {
		got := parseGuess(tt.line, tt.blank)
		if len(got) != len(tt.expected) {
			t.Errorf("parseGuess(%q) = %v, want %v", tt.line, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("parseGuess(%q)[%d] = %q, want %q", tt.line, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, nil)
	if !strings.Contains(buf.String(), "empty") {
		t.Errorf("Expected empty message, got %q", buf.String())
	}

	buf.Reset()
	printLeaderboard(&buf, []leaderboard.Entry{{Name: "ann", Score: 3}, {Name: "", Score: 4}})
	out := buf.String()
	if !strings.Contains(out, "1  ann") || !strings.Contains(out, "(anonymous)") {
		t.Errorf("Unexpected leaderboard output:\n%s", out)
	}
}

// writeCoinConfig creates a config where every game ends after one guess
func writeCoinConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	coin := `{"name":"coin","description":"one slot","alphabet":["a",""],"blank":"","code_length":1,"max_attempts":1}`
	if err := os.WriteFile(filepath.Join(dir, "coin.json"), []byte(coin), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunPlay(t *testing.T) {
	dir := writeCoinConfig(t)
	services, err := initializeServices(dir, filepath.Join(dir, "board.txt"))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	input := strings.Join([]string{
		"a a",
		"pink",
		"history",
		"a",
		"history",
		"restart",
		"leaderboard",
		"help",
		"quit",
		"a",
	}, "\n")

	var out bytes.Buffer
	if err := runPlay(context.Background(), services.Game, strings.NewReader(input), &out, "ann", "coin"); err != nil {
		t.Fatalf("runPlay failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"find the 1-symbol code in 1 attempts",
		"Symbols: a _",
		"Invalid guess",
		"No guesses yet.",
		"bulls:",
		`Type "restart"`,
		" 1. a",
		"New code drawn",
		"Commands:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}

	// The line after quit is never played
	history, _ := services.Game.ListSessions(context.Background())
	if len(history) != 1 || history[0].State.Attempts != 0 {
		t.Errorf("Expected one restarted session, got %+v", history)
	}
}

func TestRunPlay_EOF(t *testing.T) {
	dir := writeCoinConfig(t)
	services, err := initializeServices(dir, filepath.Join(dir, "board.txt"))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	var out bytes.Buffer
	if err := runPlay(context.Background(), services.Game, strings.NewReader(""), &out, "", ""); err != nil {
		t.Errorf("Expected clean exit on EOF, got %v", err)
	}

	if err := runPlay(context.Background(), services.Game, strings.NewReader(""), &out, strings.Repeat("x", 40), ""); err == nil {
		t.Error("Expected error for a player name that is too long")
	}
}

func TestNewRouter(t *testing.T) {
	dir := writeCoinConfig(t)
	services, err := initializeServices(dir, filepath.Join(dir, "board.txt"))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	router := newRouter(services.Game, websocket.NewHub(), mcp.NewClient("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected health 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	router.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"jsonrpc"`) {
		t.Errorf("Expected JSON-RPC response from /mcp, got %d %s", w.Code, w.Body.String())
	}
}

func TestApp_LeaderboardCommand(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	dir := t.TempDir()
	path := filepath.Join(dir, "board.txt")
	if _, err := leaderboard.AppendAndPersist(path, leaderboard.Entry{Name: "ann", Score: 3}); err != nil {
		t.Fatalf("seed leaderboard: %v", err)
	}

	app := newApp()
	if err := app.Run(context.Background(), []string{"mastermind", "--log-level", "error", "--leaderboard", path, "leaderboard"}); err != nil {
		t.Errorf("leaderboard command failed: %v", err)
	}

	if err := newApp().Run(context.Background(), []string{"mastermind", "--log-level", "loud", "leaderboard"}); err == nil {
		t.Error("Expected error for invalid log level")
	}
}
