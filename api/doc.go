// Package api provides HTTP REST API handlers for the Mastermind game.
//
// The api package implements:
//   - Session management endpoints
//   - Guess building, turn finalization and restarts
//   - Turn history and leaderboard endpoints
//   - Configuration listing and creation
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session {player_name, config_id}
//   - GET /api/sessions - List sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - PUT /api/sessions/{id}/slots/{index} - Place {symbol} in a guess slot
//   - DELETE /api/sessions/{id}/slots/{index} - Clear a guess slot
//   - POST /api/sessions/{id}/finalize - Score the current guess
//   - POST /api/sessions/{id}/guess - Fill and score {guess: [...]} in one call
//   - POST /api/sessions/{id}/restart - Start a new round with a fresh code
//   - GET /api/sessions/{id}/history - Turn history (page, limit, order)
//
// Leaderboard and Configuration:
//   - GET /api/leaderboard - Top five winners
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// Operations:
//   - GET /ws?session={id} - WebSocket state updates
//   - GET /metrics - Prometheus metrics
//   - GET /health - Liveness check
//
// Error Handling:
//
// Errors are returned as JSON with the kind reported by service.ErrorKind,
// which also selects the HTTP status:
//
//	{
//	  "error": "session not found: session not found",
//	  "kind": "not_found"
//	}
//
// A leaderboard failure on a winning turn returns 500 with kind
// "persistence"; the turn itself was still applied and WebSocket clients
// receive the updated state.
package api
