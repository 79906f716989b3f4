// Package session provides player sessions for the Mastermind game.
//
// The session package implements:
//   - The guess buffer a player fills slot by slot before checking
//   - Round progression and win/loss tracking on top of the engine
//   - Turn history for the current game
//   - Leaderboard maintenance when a game is won
//   - Thread-safe session storage and lifecycle management
//
// Core Types:
//
// Session wraps one engine.GameEngine with the player's name, the guess
// being built, the round counter and the history of finalized turns.
// Manager keeps sessions by ID and hands every session it creates the same
// leaderboard.Store.
//
// Session Identifiers:
//
// Generated session IDs are random UUIDs. Callers may supply their own ID;
// lookups are case-insensitive.
//
// Concurrency:
//
// A Session is not safe for concurrent use. The Manager is: multiple
// goroutines can create, look up and delete sessions simultaneously. The
// service layer serializes operations on individual sessions.
//
// Usage:
//
//	board, _ := leaderboard.NewStore("leaderboard.txt")
//	manager := session.NewManagerWithLeaderboard(board)
//
//	sess, err := manager.Create("", "ann", engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.SetGuessSlot("red", 0)
//	sess.SetGuessSlot("blue", 1)
//	if err := sess.FinalizeTurn(); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(sess.GetLastScore())
//
// Cleanup:
//
// Sessions can be explicitly deleted or removed by CleanupExpiredSessions
// once they have been idle longer than a given age.
package session
