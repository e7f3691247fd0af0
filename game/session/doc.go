// Package session provides the session registry for Hangmen.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session pin generation
//   - Idle expiry and removal of dormant (empty) sessions
//
// Session Identifiers:
//
// Sessions use 6-character lowercase base-36 pins that are short enough to
// read out loud. Pins come from crypto/rand and are regenerated when they
// collide with a live session. Lookups are case-insensitive.
//
// Concurrency:
//
// The Manager guards its map with its own RWMutex. That lock is held only
// for registry operations; play inside a session is serialized by the
// session's own mutex, so creating or looking up sessions never waits on a
// game in progress.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	sess, err := manager.Create(engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// SweepDormant removes sessions that were empty on two consecutive sweeps.
// CleanupExpiredSessions removes sessions that have not been touched within
// a retention window. Both are driven by tickers in the server.
package session
