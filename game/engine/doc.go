// Package engine provides the core game logic for Hangmen, a reverse hangman
// played by several people at once.
//
// The engine package implements the game mechanics including:
//   - Player roster and readiness tracking
//   - The lobby to active transition and turn-order shuffling
//   - Letter and word guessing with elimination
//   - Rules sets and their validation
//
// Core Types:
//
// Game holds the complete state of one session: the roster, the turn queue,
// and the shared set of guessed letters. Game is not safe for concurrent use;
// callers serialize access (the service layer holds one mutex per session).
// SessionState is the JSON snapshot served to clients.
//
// Usage:
//
//	g := engine.NewGame(engine.DefaultRules())
//	alice, _ := g.Join("alice")
//	bob, _ := g.Join("bob")
//	_, _ = g.SetWord(alice, "banana")
//	_, _ = g.SetWord(bob, "apple")
//
//	// Both players are ready, the game is active.
//	outcome, err := g.GuessLetter("a")
//	state := g.State("sid")
//
// Game Rules:
//
// Every player commits a secret word. Once all players are ready the turn
// queue is shuffled and letters are guessed one at a time. A player whose
// word has all of its distinct letters guessed is eliminated. The front of
// the turn queue is always the player whose turn it is; each guess rotates
// the queue by one. The last player standing wins.
package engine
