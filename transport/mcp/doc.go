// Package mcp provides a Model Context Protocol server for the Mastermind game.
//
// The mcp package implements:
//   - MCP tool definitions for game operations
//   - A thin proxy that forwards every tool call to the REST API
//   - Text rendering of boards, turn results and the leaderboard
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session, get_session, list_sessions
//   - place_symbol, clear_slot: edit the guess in progress
//   - finalize_turn, submit_guess: score a guess
//   - restart_game: start a new round with a fresh code
//   - turn_history: paginated guesses and scores
//   - leaderboard: the five best winners
//   - list_configs: available rule sets
//   - game_instructions: rules and strategy hints
//
// Errors reported by the REST API come back as tool error results that
// include the error kind, for example "session not found (not_found)".
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
