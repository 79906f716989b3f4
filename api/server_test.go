package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/service"
	"github.com/wricardo/mastermind/game/session"
	ws "github.com/wricardo/mastermind/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	PlaceSymbolFunc  func(ctx context.Context, sessionID string, index int, symbol engine.Symbol) (*service.SessionInfo, error)
	ClearSlotFunc    func(ctx context.Context, sessionID string, index int) (*service.SessionInfo, error)
	FinalizeTurnFunc func(ctx context.Context, sessionID string) (*service.TurnResult, error)
	SubmitGuessFunc  func(ctx context.Context, sessionID string, guess []engine.Symbol) (*service.TurnResult, error)
	RestartFunc      func(ctx context.Context, sessionID string) (*service.SessionInfo, error)

	// Game State
	GetHistoryFunc     func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	GetLeaderboardFunc func(ctx context.Context) ([]leaderboard.Entry, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func testInfo(id string) *service.SessionInfo {
	return &service.SessionInfo{
		ID:         id,
		ConfigName: "classic",
		PlayerName: "ann",
		CreatedAt:  time.Now(),
		State: &session.Snapshot{
			ID:          id,
			Round:       1,
			MaxAttempts: 10,
			CodeLength:  4,
			Status:      engine.Running,
		},
	}
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, playerName, configName)
	}
	return testInfo("test-session"), nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return testInfo(sessionID), nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) PlaceSymbol(ctx context.Context, sessionID string, index int, symbol engine.Symbol) (*service.SessionInfo, error) {
	if m.PlaceSymbolFunc != nil {
		return m.PlaceSymbolFunc(ctx, sessionID, index, symbol)
	}
	return testInfo(sessionID), nil
}

func (m *MockGameService) ClearSlot(ctx context.Context, sessionID string, index int) (*service.SessionInfo, error) {
	if m.ClearSlotFunc != nil {
		return m.ClearSlotFunc(ctx, sessionID, index)
	}
	return testInfo(sessionID), nil
}

func (m *MockGameService) FinalizeTurn(ctx context.Context, sessionID string) (*service.TurnResult, error) {
	if m.FinalizeTurnFunc != nil {
		return m.FinalizeTurnFunc(ctx, sessionID)
	}
	return &service.TurnResult{Status: engine.Running, Applied: true, State: testInfo(sessionID).State}, nil
}

func (m *MockGameService) SubmitGuess(ctx context.Context, sessionID string, guess []engine.Symbol) (*service.TurnResult, error) {
	if m.SubmitGuessFunc != nil {
		return m.SubmitGuessFunc(ctx, sessionID, guess)
	}
	return &service.TurnResult{Guess: guess, Status: engine.Running, Applied: true, State: testInfo(sessionID).State}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return testInfo(sessionID), nil
}

// Game State
func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Turns: []session.Turn{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc(ctx)
	}
	return []leaderboard.Entry{}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return engine.DefaultConfig(), nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers

func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, ws.NewHub())
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func expectErrorKind(t *testing.T, w *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("Expected status %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["kind"] != kind {
		t.Errorf("Expected error kind %q, got %q", kind, resp["kind"])
	}
	if resp["error"] == "" {
		t.Error("Expected error message in response")
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return testInfo("sess-123"), nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
				if resp.State == nil || resp.State.Status != engine.Running {
					t.Errorf("Expected running state, got %+v", resp.State)
				}
			},
		},
		{
			name:        "Create session with player and config",
			requestBody: map[string]string{"player_name": "zoe", "config_id": "easy"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					if playerName != "zoe" || configName != "easy" {
						t.Errorf("Unexpected arguments %q %q", playerName, configName)
					}
					info := testInfo("sess-456")
					info.ConfigName = configName
					return info, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Deprecated config_name still accepted",
			requestBody: map[string]string{"config_name": "hard"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					if configName != "hard" {
						t.Errorf("Expected config name 'hard', got %s", configName)
					}
					return testInfo("sess-789"), nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("load config: %w", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Name too long",
			requestBody: map[string]string{"player_name": strings.Repeat("x", 40)},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: player name too long", session.ErrInvalidArgument)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, playerName, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				expectErrorKind(t, w, http.StatusInternalServerError, service.KindInternal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			var body interface{}
			if tt.requestBody != nil {
				body = tt.requestBody
			}
			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions", body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))

	w := serve(server, req)
	expectErrorKind(t, w, http.StatusBadRequest, service.KindInvalidArgument)
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(mock)

	ids := func(t *testing.T, w *httptest.ResponseRecorder) []string {
		var resp struct {
			Count    int                    `json:"count"`
			Total    int                    `json:"total"`
			Sessions []*service.SessionInfo `json:"sessions"`
		}
		parseResponse(t, w, &resp)
		out := make([]string, len(resp.Sessions))
		for i, s := range resp.Sessions {
			out[i] = s.ID
		}
		if resp.Count != len(out) || resp.Total != 3 {
			t.Errorf("Unexpected count/total %d/%d", resp.Count, resp.Total)
		}
		return out
	}

	tests := []struct {
		query    string
		expected string
	}{
		{"", "mid,old,new"},
		{"?sort=created&order=asc", "old,mid,new"},
		{"?sort=created", "new,mid,old"},
		{"?limit=1", "mid"},
		{"?limit=0", "mid,old,new"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got := strings.Join(ids(t, w), ","); got != tt.expected {
				t.Errorf("Expected order %s, got %s", tt.expected, got)
			}
		})
	}

	t.Run("service error", func(t *testing.T) {
		failing := setupTestServer(&MockGameService{
			ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
				return nil, fmt.Errorf("database error")
			},
		})
		expectErrorKind(t, serve(failing, makeRequest("GET", "/api/sessions", nil)), http.StatusInternalServerError, service.KindInternal)
	})
}

func TestGetSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return testInfo(sessionID), nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.ID != "abc" {
		t.Errorf("Expected session abc, got %s", info.ID)
	}

	expectErrorKind(t, serve(server, makeRequest("GET", "/api/sessions/missing", nil)), http.StatusNotFound, service.KindNotFound)
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	mock := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return session.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("DELETE", "/api/sessions/abc", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "abc" {
		t.Errorf("Expected abc to be deleted, got %q", deleted)
	}

	expectErrorKind(t, serve(server, makeRequest("DELETE", "/api/sessions/missing", nil)), http.StatusNotFound, service.KindNotFound)
}

// Game Operation Tests

func TestPlaceSymbol(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		body         interface{}
		err          error
		expectStatus int
		expectKind   string
	}{
		{name: "valid placement", path: "/api/sessions/s1/slots/2", body: map[string]string{"symbol": "red"}, expectStatus: http.StatusOK},
		{name: "blank symbol", path: "/api/sessions/s1/slots/0", body: map[string]string{"symbol": ""}, expectStatus: http.StatusOK},
		{name: "non-numeric index", path: "/api/sessions/s1/slots/two", body: map[string]string{"symbol": "red"}, expectStatus: http.StatusBadRequest, expectKind: service.KindIndexOutOfRange},
		{name: "missing symbol", path: "/api/sessions/s1/slots/1", body: map[string]string{}, expectStatus: http.StatusBadRequest, expectKind: service.KindInvalidArgument},
		{name: "out of range", path: "/api/sessions/s1/slots/9", body: map[string]string{"symbol": "red"}, err: session.ErrIndexOutOfRange, expectStatus: http.StatusBadRequest, expectKind: service.KindIndexOutOfRange},
		{name: "invalid symbol", path: "/api/sessions/s1/slots/1", body: map[string]string{"symbol": "pink"}, err: fmt.Errorf("%w: pink", engine.ErrInvalidSymbol), expectStatus: http.StatusBadRequest, expectKind: service.KindInvalidSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIndex int
			var gotSymbol engine.Symbol
			mock := &MockGameService{
				PlaceSymbolFunc: func(ctx context.Context, sessionID string, index int, symbol engine.Symbol) (*service.SessionInfo, error) {
					gotIndex, gotSymbol = index, symbol
					if tt.err != nil {
						return nil, tt.err
					}
					return testInfo(sessionID), nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("PUT", tt.path, tt.body))

			if tt.expectKind != "" {
				expectErrorKind(t, w, tt.expectStatus, tt.expectKind)
				return
			}
			if w.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectStatus, w.Code)
			}
			want := tt.body.(map[string]string)["symbol"]
			if gotSymbol != engine.Symbol(want) {
				t.Errorf("Expected symbol %q, got %q", want, gotSymbol)
			}
			if !strings.HasSuffix(tt.path, fmt.Sprintf("/%d", gotIndex)) {
				t.Errorf("Index %d does not match path %s", gotIndex, tt.path)
			}
		})
	}
}

func TestClearSlot(t *testing.T) {
	var cleared = -1
	mock := &MockGameService{
		ClearSlotFunc: func(ctx context.Context, sessionID string, index int) (*service.SessionInfo, error) {
			if index > 3 {
				return nil, session.ErrIndexOutOfRange
			}
			cleared = index
			return testInfo(sessionID), nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("DELETE", "/api/sessions/s1/slots/3", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if cleared != 3 {
		t.Errorf("Expected slot 3 to be cleared, got %d", cleared)
	}

	expectErrorKind(t, serve(server, makeRequest("DELETE", "/api/sessions/s1/slots/4", nil)), http.StatusBadRequest, service.KindIndexOutOfRange)
}

func TestFinalizeTurn(t *testing.T) {
	t.Run("turn applied", func(t *testing.T) {
		mock := &MockGameService{
			FinalizeTurnFunc: func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
				return &service.TurnResult{
					Guess:    engine.ParseCode("red", "blue", "", ""),
					Score:    engine.Score{Bulls: 1, Cows: 1},
					Status:   engine.Running,
					Round:    2,
					Attempts: 1,
					Applied:  true,
				}, nil
			},
		}

		w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/s1/finalize", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var result service.TurnResult
		parseResponse(t, w, &result)
		if result.Score.Bulls != 1 || result.Score.Cows != 1 || result.Round != 2 {
			t.Errorf("Unexpected result %+v", result)
		}
	})

	t.Run("leaderboard failure", func(t *testing.T) {
		fetched := false
		mock := &MockGameService{
			FinalizeTurnFunc: func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
				return nil, fmt.Errorf("record win: %w", leaderboard.ErrPersistence)
			},
			GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
				fetched = true
				return testInfo(sessionID), nil
			},
		}

		w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/s1/finalize", nil))
		expectErrorKind(t, w, http.StatusInternalServerError, service.KindPersistence)
		if !fetched {
			t.Error("Expected session state to be refreshed after a persistence failure")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		mock := &MockGameService{
			FinalizeTurnFunc: func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
				return nil, session.ErrSessionNotFound
			},
		}
		w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/nope/finalize", nil))
		expectErrorKind(t, w, http.StatusNotFound, service.KindNotFound)
	})
}

func TestSubmitGuess(t *testing.T) {
	var received []engine.Symbol
	mock := &MockGameService{
		SubmitGuessFunc: func(ctx context.Context, sessionID string, guess []engine.Symbol) (*service.TurnResult, error) {
			received = guess
			if len(guess) != 4 {
				return nil, engine.ErrLengthMismatch
			}
			return &service.TurnResult{
				Guess:   guess,
				Score:   engine.Score{Bulls: 4},
				Status:  engine.Won,
				Applied: true,
				Events:  []service.GameEvent{{Type: "turn"}, {Type: "won"}},
			}, nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("POST", "/api/sessions/s1/guess", map[string][]string{"guess": {"red", "blue", "green", ""}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if engine.Code(received).String() != "red,blue,green,_" {
		t.Errorf("Unexpected guess passed to service: %v", received)
	}
	var result service.TurnResult
	parseResponse(t, w, &result)
	if result.Status != engine.Won {
		t.Errorf("Expected won status, got %s", result.Status)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/s1/guess", map[string][]string{"guess": {"red"}}))
	expectErrorKind(t, w, http.StatusBadRequest, service.KindLengthMismatch)

	req := httptest.NewRequest("POST", "/api/sessions/s1/guess", strings.NewReader("[]"))
	expectErrorKind(t, serve(server, req), http.StatusBadRequest, service.KindInvalidArgument)
}

func TestRestart(t *testing.T) {
	mock := &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, session.ErrSessionNotFound
			}
			return testInfo(sessionID), nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("POST", "/api/sessions/s1/restart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string               `json:"message"`
		Session *service.SessionInfo `json:"session"`
	}
	parseResponse(t, w, &resp)
	if resp.Session == nil || resp.Session.State.Round != 1 {
		t.Errorf("Expected restarted session in response, got %+v", resp.Session)
	}

	expectErrorKind(t, serve(server, makeRequest("POST", "/api/sessions/missing/restart", nil)), http.StatusNotFound, service.KindNotFound)
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"invalid values ignored", "?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{
						Turns:      []session.Turn{{Round: 1, Guess: engine.ParseCode("red"), Score: engine.Score{Bulls: 1}}},
						TotalTurns: 1,
						Page:       opts.Page,
						PageSize:   opts.Limit,
						TotalPages: 1,
					}, nil
				},
			}

			w := serve(setupTestServer(mock), makeRequest("GET", "/api/sessions/s1/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
			var resp service.HistoryResponse
			parseResponse(t, w, &resp)
			if resp.TotalTurns != 1 || len(resp.Turns) != 1 {
				t.Errorf("Unexpected history %+v", resp)
			}
		})
	}
}

func TestLeaderboard(t *testing.T) {
	mock := &MockGameService{
		GetLeaderboardFunc: func(ctx context.Context) ([]leaderboard.Entry, error) {
			return []leaderboard.Entry{{Name: "ann", Score: 3}, {Name: "zoe", Score: 5}}, nil
		},
	}

	w := serve(setupTestServer(mock), makeRequest("GET", "/api/leaderboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count   int                 `json:"count"`
		Entries []leaderboard.Entry `json:"entries"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 2 || resp.Entries[0].Name != "ann" || resp.Entries[1].Score != 5 {
		t.Errorf("Unexpected leaderboard %+v", resp)
	}

	failing := setupTestServer(&MockGameService{
		GetLeaderboardFunc: func(ctx context.Context) ([]leaderboard.Entry, error) {
			return nil, leaderboard.ErrPersistence
		},
	})
	expectErrorKind(t, serve(failing, makeRequest("GET", "/api/leaderboard", nil)), http.StatusInternalServerError, service.KindPersistence)
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Filename: "classic.json", CodeLength: 4, MaxAttempts: 10, AlphabetSize: 7},
				{ConfigID: "easy", Filename: "easy.json", CodeLength: 3, MaxAttempts: 12, AlphabetSize: 5},
			}, nil
		},
	}

	w := serve(setupTestServer(mock), makeRequest("GET", "/api/configs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var configs []*service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 2 || configs[1].ConfigID != "easy" {
		t.Errorf("Unexpected configs %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	var requested string
	mock := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			requested = configName
			if configName == "missing" {
				return nil, fmt.Errorf("%w: missing", service.ErrConfigNotFound)
			}
			return engine.DefaultConfig(), nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/configs/classic.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if requested != "classic" {
		t.Errorf("Expected .json suffix to be stripped, got %q", requested)
	}
	var config engine.GameConfig
	parseResponse(t, w, &config)
	if config.CodeLength != engine.DefaultCodeLength {
		t.Errorf("Expected code length %d, got %d", engine.DefaultCodeLength, config.CodeLength)
	}

	expectErrorKind(t, serve(server, makeRequest("GET", "/api/configs/missing", nil)), http.StatusNotFound, service.KindNotFound)
}

func TestCreateConfig(t *testing.T) {
	var savedName string
	var saved *engine.GameConfig
	mock := &MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			if config.CodeLength <= 0 {
				return fmt.Errorf("%w: code length", engine.ErrInvalidConfig)
			}
			savedName, saved = configName, config
			return nil
		},
	}
	server := setupTestServer(mock)

	body := map[string]interface{}{
		"config_id":    "tiny",
		"name":         "Tiny",
		"alphabet":     []string{"a", "b", ""},
		"blank":        "",
		"code_length":  2,
		"max_attempts": 4,
	}
	w := serve(server, makeRequest("POST", "/api/configs", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}
	if savedName != "tiny" || saved.Name != "Tiny" || saved.CodeLength != 2 || len(saved.Alphabet) != 3 {
		t.Errorf("Unexpected saved config %q %+v", savedName, saved)
	}

	delete(body, "config_id")
	serve(server, makeRequest("POST", "/api/configs", body))
	if savedName != "Tiny" {
		t.Errorf("Expected display name fallback, got %q", savedName)
	}

	expectErrorKind(t, serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"code_length": 2})), http.StatusBadRequest, service.KindInvalidArgument)

	body["code_length"] = 0
	expectErrorKind(t, serve(server, makeRequest("POST", "/api/configs", body)), http.StatusBadRequest, service.KindInvalidConfig)
}

// Operations Tests

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := serve(server, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}

	w = serve(server, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected metrics status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mastermind_sessions_created_total") {
		t.Error("Expected game metrics to be exposed")
	}
}

func TestStatusForKind(t *testing.T) {
	tests := map[string]int{
		service.KindNotFound:        http.StatusNotFound,
		service.KindAlreadyExists:   http.StatusConflict,
		service.KindInvalidSymbol:   http.StatusBadRequest,
		service.KindIndexOutOfRange: http.StatusBadRequest,
		service.KindLengthMismatch:  http.StatusBadRequest,
		service.KindInvalidArgument: http.StatusBadRequest,
		service.KindInvalidConfig:   http.StatusBadRequest,
		service.KindPersistence:     http.StatusInternalServerError,
		service.KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range tests {
		if got := statusForKind(kind); got != status {
			t.Errorf("statusForKind(%s) = %d, want %d", kind, got, status)
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	t.Run("missing session parameter", func(t *testing.T) {
		w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		mock := &MockGameService{
			GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
				return nil, session.ErrSessionNotFound
			},
		}
		w := serve(setupTestServer(mock), makeRequest("GET", "/ws?session=nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("receives updates after a turn", func(t *testing.T) {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		mock := &MockGameService{
			FinalizeTurnFunc: func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
				state := testInfo(sessionID).State
				state.Status = engine.Won
				return &service.TurnResult{
					Status:  engine.Won,
					Applied: true,
					State:   state,
					Events:  []service.GameEvent{{Type: "turn"}, {Type: "won"}},
				}, nil
			},
		}
		httpServer := httptest.NewServer(NewServer(mock, hub))
		defer httpServer.Close()

		wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=live"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.ClientCount("live") == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		resp, err := http.Post(httpServer.URL+"/api/sessions/live/finalize", "application/json", nil)
		if err != nil {
			t.Fatalf("Finalize request failed: %v", err)
		}
		resp.Body.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))

		var update ws.Message
		if err := conn.ReadJSON(&update); err != nil {
			t.Fatalf("Failed to read state update: %v", err)
		}
		if update.Event != "state_update" || update.State == nil || update.State.Status != engine.Won {
			t.Errorf("Unexpected state update %+v", update)
		}

		var event ws.Message
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("Failed to read game event: %v", err)
		}
		if event.Event != "won" {
			t.Errorf("Expected won event, got %q", event.Event)
		}
	})
}
