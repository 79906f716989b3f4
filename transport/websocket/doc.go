// Package websocket provides WebSocket transport for the Mastermind game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Snapshot broadcasting after every state change
//   - Game events such as won and lost
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub tracks the
// clients watching each session. Each connection runs a read goroutine that
// keeps it alive and a write goroutine that drains its send buffer.
//
// Message Protocol:
//
// Messages are JSON-encoded, one per text frame:
//
//	{"session_id": "…", "state": {…snapshot…}, "event": "state_update"}
//	{"session_id": "…", "event": "won", "data": {…}}
//
// Incoming messages from clients are read and discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// A client whose send buffer fills up is dropped rather than blocking the
// broadcaster.
package websocket
