// Package engine provides the core rules of the Mastermind code-breaking game.
//
// The engine package implements:
//   - Secret code generation from a fixed symbol alphabet
//   - Bulls and cows scoring with exact multiset matching
//   - Attempt budget accounting
//   - Win/loss determination and restart
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameConfig defines the alphabet, code length and
// attempt budget, loaded from JSON files or built with DefaultConfig.
// RandomSource isolates randomness so a seeded source gives reproducible codes.
//
// Usage:
//
//	gameEngine, err := engine.NewGame(engine.DefaultConfig(), engine.NewSeededSource(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	score, err := gameEngine.Score(engine.ParseCode("red", "blue", "", "black"))
//	status := gameEngine.CheckStatus()
//
// Game Rules:
//
// A bull is a guess symbol equal to the secret symbol at the same position.
// A cow is a guess symbol present elsewhere in the secret, counted without
// reusing a position already claimed by a bull or another cow. Blanks are
// ordinary symbols. The game is won when every position is a bull, and lost
// when the attempt budget is spent without a full match.
package engine
