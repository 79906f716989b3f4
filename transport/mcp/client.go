package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/service"
	"github.com/wricardo/mastermind/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// APIError is returned when the REST API answers with an error status
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Mastermind",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mastermind - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guess the hidden code of colored pegs within the attempt budget. After each
guess you learn how many pegs are the right color in the right slot (bulls)
and how many are the right color in the wrong slot (cows).

AVAILABLE TOOLS:
- create_session: Start a new game for a player
- get_session: Show the board of a session
- list_sessions: List active sessions
- place_symbol: Put a color in one slot of the current guess
- clear_slot: Empty one slot of the current guess
- finalize_turn: Score the current guess
- submit_guess: Fill every slot and score in one call
- restart_game: Start a new round with a fresh code
- turn_history: View past guesses and scores
- leaderboard: Show the five best winners
- list_configs: List available rule sets
- game_instructions: Full rules and strategy hints`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func slotIndexProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Zero-based slot index",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session for a player with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Name recorded on the leaderboard when the game is won (max 16 characters)",
				},
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the board, guess in progress and status of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_symbol",
		Description: "Place a symbol in one slot of the current guess",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index":      slotIndexProperty(),
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Symbol from the session alphabet",
				},
			},
			Required: []string{"session_id", "index", "symbol"},
		},
	}, c.handlePlaceSymbol)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_slot",
		Description: "Clear one slot of the current guess",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index":      slotIndexProperty(),
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleClearSlot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "finalize_turn",
		Description: "Score the current guess; empty slots count as blank",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleFinalizeTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_guess",
		Description: "Fill every slot with the given symbols and score the guess",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"guess": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "One symbol per slot, in order",
				},
			},
			Required: []string{"session_id", "guess"},
		},
	}, c.handleSubmitGuess)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Start a new round with a freshly drawn code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get paginated guess history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Turns per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc or desc (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	// Leaderboard and configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show the five best winners, fewest attempts first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game rules and strategy hints",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return &APIError{Status: resp.StatusCode, Kind: errResp["kind"], Message: msg}
		}
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func requireSessionID(args map[string]interface{}) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return sessionID, nil
}

func requireIndex(args map[string]interface{}) (int, error) {
	index, ok := args["index"].(float64)
	if !ok {
		return 0, fmt.Errorf("index is required")
	}
	return int(index), nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	playerName, _ := args["player_name"].(string)
	configID, _ := args["config_id"].(string)

	body := map[string]string{"player_name": playerName}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		status := "unknown"
		if s.State != nil {
			status = fmt.Sprintf("%s, %d/%d attempts", s.State.Status, s.State.Attempts, s.State.MaxAttempts)
		}
		result.WriteString(fmt.Sprintf("- %s (Player: %s, Config: %s, %s, Created: %s)\n",
			s.ID, displayName(s.PlayerName), s.ConfigName, status, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handlePlaceSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := requireIndex(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	symbol, ok := args["symbol"].(string)
	if !ok {
		return mcp.NewToolResultError("symbol is required"), nil
	}

	var info service.SessionInfo
	path := sessionPath(sessionID, fmt.Sprintf("/slots/%d", index))
	if err := c.apiCall(ctx, "PUT", path, map[string]string{"symbol": symbol}, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Placed %s in slot %d\n\n%s",
		displaySymbol(engine.Symbol(symbol)), index, formatSnapshot(info.State))), nil
}

func (c *Client) handleClearSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := requireIndex(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, fmt.Sprintf("/slots/%d", index)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Cleared slot %d\n\n%s", index, formatSnapshot(info.State))), nil
}

func (c *Client) handleFinalizeTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.TurnResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/finalize"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handleSubmitGuess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	guessRaw, ok := args["guess"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("guess must be an array of symbols"), nil
	}

	guess := make([]string, 0, len(guessRaw))
	for i, g := range guessRaw {
		symbol, ok := g.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("guess[%d] must be a string", i)), nil
		}
		guess = append(guess, symbol)
	}

	var result service.TurnResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/guess"), map[string]interface{}{"guess": guess}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string               `json:"message"`
		Session *service.SessionInfo `json:"session"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state *session.Snapshot
	if response.Session != nil {
		state = response.Session.State
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(state))), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                 `json:"count"`
		Entries []leaderboard.Entry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", "/api/leaderboard", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(response.Entries)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		result.WriteString(fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Slots: %d, Attempts: %d, Symbols: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.CodeLength, config.MaxAttempts, config.AlphabetSize))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Mastermind - Complete Instructions

GAME OBJECTIVE:
Find the hidden code. The code is a fixed number of slots, each holding one
symbol from the session alphabet. Symbols may repeat, and the blank symbol is
a legal code symbol too.

TURNS:
• Build a guess with place_symbol and clear_slot, then call finalize_turn
• Or send the whole guess at once with submit_guess
• Slots left empty are scored as the blank symbol
• Each scored guess uses one attempt; the session moves to the next round

SCORING:
• Bulls: right symbol in the right slot
• Cows: right symbol in the wrong slot, each secret peg counted at most once
• Example: secret red,blue,green,yellow and guess red,green,blue,black
  score 1 bull (red) and 2 cows (green, blue)

WINNING AND LOSING:
• All bulls wins, even on the final attempt
• Running out of attempts without all bulls loses
• The secret is revealed once the game is over
• After the game ends further guesses are ignored; use restart_game

LEADERBOARD:
• A win records your player name and attempt count
• Only the five best results are kept, fewest attempts first
• A new result ties ahead of older results with the same attempt count

STRATEGY HINTS:
• Open with guesses that repeat a symbol to count each color quickly
• Use cows to learn which colors are present, bulls to pin down positions
• Every guess should be consistent with all scores seen so far

TOOLS:
• create_session, get_session, list_sessions
• place_symbol, clear_slot, finalize_turn, submit_guess, restart_game
• turn_history, leaderboard, list_configs`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func displayName(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}

func displaySymbol(s engine.Symbol) string {
	if s == "" {
		return "_"
	}
	return string(s)
}

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nPlayer: %s\nConfig: %s\nCreated: %s\n\n%s",
		info.ID, displayName(info.PlayerName), info.ConfigName,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(info.State))
}

func formatGuess(slots []session.Slot) string {
	parts := make([]string, len(slots))
	for i, slot := range slots {
		if !slot.Filled {
			parts[i] = "·"
			continue
		}
		parts[i] = displaySymbol(slot.Symbol)
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

func formatSnapshot(state *session.Snapshot) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Round: %d | Attempts: %d/%d | Status: %s\n",
		state.Round, state.Attempts, state.MaxAttempts, state.Status))

	alphabet := make([]string, len(state.Alphabet))
	for i, s := range state.Alphabet {
		alphabet[i] = displaySymbol(s)
	}
	result.WriteString(fmt.Sprintf("Alphabet: %s\n", strings.Join(alphabet, ", ")))

	if len(state.History) > 0 {
		result.WriteString("\nBoard:\n")
		for _, turn := range state.History {
			result.WriteString(formatTurnLine(turn))
		}
	}

	if state.Status == engine.Running {
		result.WriteString(fmt.Sprintf("\nCurrent guess: %s\n", formatGuess(state.Guess)))
	}

	switch state.Status {
	case engine.Won:
		result.WriteString(fmt.Sprintf("\n🎉 SOLVED in %d attempts! Code: %s", state.Attempts, state.Secret))
	case engine.Lost:
		result.WriteString(fmt.Sprintf("\n💀 OUT OF ATTEMPTS. Code was: %s", state.Secret))
	}

	return result.String()
}

func formatTurnLine(turn session.Turn) string {
	return fmt.Sprintf("%2d. %-32s bulls: %d  cows: %d\n", turn.Round, turn.Guess.String(), turn.Score.Bulls, turn.Score.Cows)
}

func formatTurnResult(result *service.TurnResult) string {
	var b strings.Builder

	if !result.Applied {
		b.WriteString("Game is already over; the guess was not scored. Use restart_game to play again.\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Guess: %s\nBulls: %d  Cows: %d\n", result.Guess, result.Score.Bulls, result.Score.Cows))
	}

	b.WriteString(fmt.Sprintf("Status: %s | Attempts: %d | Round: %d\n", result.Status, result.Attempts, result.Round))
	if len(result.Secret) > 0 {
		b.WriteString(fmt.Sprintf("Secret: %s\n", result.Secret))
	}
	if result.Message != "" {
		b.WriteString(fmt.Sprintf("\nMessage: %s", result.Message))
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Turn History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalTurns))

	if len(history.Turns) == 0 {
		b.WriteString("(no turns yet)")
		return b.String()
	}
	for _, turn := range history.Turns {
		b.WriteString(formatTurnLine(turn))
	}

	return b.String()
}

func formatLeaderboard(entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return "Leaderboard is empty. Win a game to get on it!"
	}

	var b strings.Builder
	b.WriteString("Leaderboard (fewest attempts first):\n\n")
	for i, entry := range entries {
		b.WriteString(fmt.Sprintf("%d. %-16s %d\n", i+1, displayName(entry.Name), entry.Score))
	}
	return b.String()
}
