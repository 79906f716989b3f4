// Package service provides the business logic layer for the Mastermind game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Guess building, turn scoring and restarts
//   - Turn history paging and leaderboard access
//   - Error classification for presentation layers
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the session package, serializing access to sessions and translating their
// state into SessionInfo and TurnResult values. ErrorKind maps any returned
// error to a short kind string that the API turns into a status code.
//
// Usage:
//
//	board, _ := leaderboard.NewStore("leaderboard.txt")
//	sessionMgr := session.NewManagerWithLeaderboard(board)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "ann", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.SubmitGuess(ctx, info.ID, engine.ParseCode("red", "blue", "green", "yellow"))
//
// Metrics:
//
// Session creation, finalized turns, finished games and leaderboard failures
// are counted in Prometheus counters registered with the default registry.
package service
