package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/hangmen/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, rulesName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	JoinSession(ctx context.Context, sessionID, name string) (*ActionResult, error)
	SetWord(ctx context.Context, sessionID, playerID, word string) (*ActionResult, error)
	GuessLetter(ctx context.Context, sessionID, letter string) (*ActionResult, error)
	GuessWord(ctx context.Context, sessionID, playerID, word string) (*ActionResult, error)
	ExitSession(ctx context.Context, sessionID, playerID string) (*ActionResult, error)
	ResetSession(ctx context.Context, sessionID string) (*ActionResult, error)

	// Game State
	GetState(ctx context.Context, sessionID string) (*engine.SessionState, error)

	// Rules
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	LoadRules(ctx context.Context, rulesName string) (*engine.Rules, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(rules engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
}

// RulesManager handles rules set loading
type RulesManager interface {
	LoadRules(name string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
}

// Session represents an active game session. All access to Game goes
// through Do, which serializes callers on the session's own mutex.
type Session struct {
	ID        string
	RulesName string
	CreatedAt time.Time

	mu             sync.Mutex
	game           *engine.Game
	lastAccessedAt time.Time
}

// NewSession wraps a game in a session.
func NewSession(id, rulesName string, game *engine.Game) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		RulesName:      rulesName,
		CreatedAt:      now,
		game:           game,
		lastAccessedAt: now,
	}
}

// Do runs fn with exclusive access to the session's game and marks the
// session as accessed.
func (s *Session) Do(fn func(g *engine.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = time.Now()
	return fn(s.game)
}

// Touch marks the session as accessed.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = time.Now()
}

// LastAccessedAt returns when the session was last used.
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

// View runs fn with exclusive access to the game without marking the
// session as accessed. fn must not mutate the game.
func (s *Session) View(fn func(g *engine.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// PlayerCount returns the size of the roster.
func (s *Session) PlayerCount() int {
	var n int
	s.View(func(g *engine.Game) { n = g.PlayerCount() })
	return n
}
