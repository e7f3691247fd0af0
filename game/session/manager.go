package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/hangmen/game/engine"
	"github.com/wricardo/hangmen/game/service"
)

const (
	// SessionIDLength is the length of generated session pins.
	SessionIDLength = 6

	maxIDAttempts = 64
)

var pinSpace = new(big.Int).Exp(big.NewInt(36), big.NewInt(SessionIDLength), nil)

var (
	ErrSessionNotFound    = fmt.Errorf("session %w", engine.ErrNotFound)
	ErrInvalidRules       = errors.New("invalid rules")
	ErrSessionIDExhausted = errors.New("could not generate a unique session ID")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	dormant  map[string]bool
	mu       sync.RWMutex

	newID    func() (string, error)
	gameOpts []engine.Option
	logger   log15.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for housekeeping messages.
func WithLogger(logger log15.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// WithGameOptions passes options to every game the manager creates.
func WithGameOptions(opts ...engine.Option) Option {
	return func(m *Manager) {
		m.gameOpts = append(m.gameOpts, opts...)
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		dormant:  make(map[string]bool),
		newID:    generateSessionID,
		logger:   log15.New("component", "session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with a fresh id, playing by the given rules
func (m *Manager) Create(rules engine.Rules) (*service.Session, error) {
	rules.ApplyDefaults()
	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.uniqueID()
	if err != nil {
		return nil, err
	}

	session := service.NewSession(id, rules.Name, engine.NewGame(rules, m.gameOpts...))
	m.sessions[id] = session
	return session, nil
}

// uniqueID draws ids until one is unused. Callers hold m.mu.
func (m *Manager) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := m.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate session ID: %w", err)
		}
		id = strings.ToLower(id)
		if _, exists := m.sessions[id]; !exists {
			return id, nil
		}
	}
	return "", ErrSessionIDExhausted
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(strings.TrimSpace(id))]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id = strings.ToLower(id)
	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	delete(m.dormant, id)
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, id)
			delete(m.dormant, id)
			removed++
			m.logger.Debug("Expired idle session", "sid", id)
		}
	}

	return removed
}

// SweepDormant removes sessions that had no players on this sweep and on
// the previous one. Sessions that are empty for the first time are only
// marked.
func (m *Manager) SweepDormant() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.PlayerCount() > 0 {
			delete(m.dormant, id)
			continue
		}
		if m.dormant[id] {
			delete(m.sessions, id)
			delete(m.dormant, id)
			removed++
			m.logger.Debug("Removed dormant session", "sid", id)
			continue
		}
		m.dormant[id] = true
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random 6-character lowercase base-36 pin
func generateSessionID() (string, error) {
	n, err := rand.Int(rand.Reader, pinSpace)
	if err != nil {
		return "", err
	}
	pin := strconv.FormatInt(n.Int64(), 36)
	return strings.Repeat("0", SessionIDLength-len(pin)) + pin, nil
}
