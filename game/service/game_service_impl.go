package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/wricardo/hangmen/game/engine"
)

// ErrRulesNotFound is returned when a session is requested with an unknown rules set.
var ErrRulesNotFound = fmt.Errorf("%w: rules not found", engine.ErrInvalidInput)

// gameServiceImpl implements the GameService interface. It holds no lock of
// its own: the session manager guards the registry and each Session guards
// its game.
type gameServiceImpl struct {
	sessions SessionManager
	rules    RulesManager
	now      func() time.Time
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, rules RulesManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		rules:    rules,
		now:      time.Now,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, rulesName string) (*SessionInfo, error) {
	var rules *engine.Rules
	if rulesName != "" {
		loaded, err := s.rules.LoadRules(rulesName)
		if err != nil {
			// Provide helpful error message with available options
			available, listErr := s.rules.ListRules()
			if listErr == nil && len(available) > 0 {
				ids := lo.Map(available, func(r *RulesInfo, _ int) string { return r.RulesID })
				return nil, fmt.Errorf("%w: '%s'. Available rules: %v", ErrRulesNotFound, rulesName, ids)
			}
			return nil, fmt.Errorf("%w: '%s': %v", ErrRulesNotFound, rulesName, err)
		}
		rules = loaded
	} else {
		rules = s.rules.GetDefault()
	}

	sess, err := s.sessions.Create(*rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	return lo.Map(sessions, func(sess *Session, _ int) *SessionInfo {
		return s.info(sess)
	}), nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// JoinSession adds a player to a session and returns its id in the result
func (s *gameServiceImpl) JoinSession(ctx context.Context, sessionID, name string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		pid, err := g.Join(name)
		if err != nil {
			return err
		}
		p, _ := g.Player(pid)
		result.PlayerID = pid
		result.Events = append(result.Events, s.event(EventPlayerJoined, pid, "", "%s joined", p.Name))
		return nil
	})
}

// SetWord commits a player's secret word. The game starts when this was the last player to get ready.
func (s *gameServiceImpl) SetWord(ctx context.Context, sessionID, playerID, word string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		started, err := g.SetWord(playerID, word)
		if err != nil {
			return err
		}
		result.PlayerID = playerID
		result.Events = append(result.Events, s.event(EventWordSet, playerID, "", "%s is ready", s.playerName(g, playerID)))
		if started {
			result.Events = append(result.Events, s.event(EventGameStarted, "", "",
				"Game started with %d players", len(g.TurnOrder())))
		}
		return nil
	})
}

// GuessLetter guesses a letter for the whole session
func (s *gameServiceImpl) GuessLetter(ctx context.Context, sessionID, letter string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		guesser, _ := g.CurrentTurn()
		before := g.GuessedLetters()

		out, err := g.GuessLetter(letter)
		if err != nil {
			return err
		}

		after := g.GuessedLetters()
		if after.Len() == before.Len() {
			// already guessed, nothing changed
			return nil
		}

		r, _ := engine.ParseLetter(letter)
		result.Events = append(result.Events, s.event(EventLetterGuessed, guesser, string(r), "Letter %c guessed", r))
		s.applyOutcome(g, out, result)
		return nil
	})
}

// GuessWord guesses a target player's full word
func (s *gameServiceImpl) GuessWord(ctx context.Context, sessionID, playerID, word string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		name := s.playerName(g, playerID)
		correct, out, err := g.GuessWord(playerID, word)
		if err != nil {
			return err
		}

		result.PlayerID = playerID
		result.Correct = correct
		if correct {
			result.Events = append(result.Events, s.event(EventWordGuessed, playerID, "", "%s's word was guessed", name))
		}
		s.applyOutcome(g, out, result)
		return nil
	})
}

// ExitSession removes a player from a session
func (s *gameServiceImpl) ExitSession(ctx context.Context, sessionID, playerID string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		name := s.playerName(g, playerID)
		out, err := g.Exit(playerID)
		if err != nil {
			return err
		}

		result.PlayerID = playerID
		result.Events = append(result.Events, s.event(EventPlayerExited, playerID, "", "%s left", name))
		if out.Started {
			result.Events = append(result.Events, s.event(EventGameStarted, "", "",
				"Game started with %d players", len(g.TurnOrder())))
		}
		s.applyOutcome(g, out, result)
		return nil
	})
}

// ResetSession returns a session to the lobby while keeping its players
func (s *gameServiceImpl) ResetSession(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.mutate(sessionID, func(g *engine.Game, result *ActionResult) error {
		g.Reset()
		result.Events = append(result.Events, s.event(EventSessionReset, "", "", "Session reset to lobby"))
		return nil
	})
}

// GetState returns a snapshot of a session
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	var state engine.SessionState
	sess.View(func(g *engine.Game) {
		state = g.State(sess.ID)
	})
	// Polling counts as activity for idle expiry.
	sess.Touch()
	return &state, nil
}

// ListRules returns available rules sets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// LoadRules loads a specific rules set
func (s *gameServiceImpl) LoadRules(ctx context.Context, rulesName string) (*engine.Rules, error) {
	return s.rules.LoadRules(rulesName)
}

// mutate looks up a session and runs fn under the session lock. The snapshot
// returned in the result is taken under the same lock, after fn.
func (s *gameServiceImpl) mutate(sessionID string, fn func(*engine.Game, *ActionResult) error) (*ActionResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	result := &ActionResult{Events: []GameEvent{}}
	err = sess.Do(func(g *engine.Game) error {
		if err := fn(g, result); err != nil {
			return err
		}
		state := g.State(sess.ID)
		result.State = &state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gameServiceImpl) applyOutcome(g *engine.Game, out engine.Outcome, result *ActionResult) {
	result.Eliminated = out.Eliminated
	for _, pid := range out.Eliminated {
		result.Events = append(result.Events, s.event(EventPlayerEliminated, pid, "",
			"%s was eliminated", s.playerName(g, pid)))
	}
	if !out.Concluded {
		return
	}

	result.Winner = out.Winner
	if out.Winner == "" {
		result.Events = append(result.Events, s.event(EventGameOver, "", "", "Game over, nobody survived"))
		return
	}
	result.Events = append(result.Events, s.event(EventGameOver, out.Winner, "",
		"Game over, %s wins", s.playerName(g, out.Winner)))
}

func (s *gameServiceImpl) playerName(g *engine.Game, pid string) string {
	p, err := g.Player(pid)
	if errors.Is(err, engine.ErrNotFound) {
		return pid
	}
	return p.Name
}

func (s *gameServiceImpl) event(typ EventType, pid, letter, format string, args ...interface{}) GameEvent {
	return GameEvent{
		Type:      typ,
		Message:   fmt.Sprintf(format, args...),
		PlayerID:  pid,
		Letter:    letter,
		Timestamp: s.now(),
	}
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	info := &SessionInfo{
		ID:        sess.ID,
		RulesName: sess.RulesName,
		CreatedAt: sess.CreatedAt,
	}
	sess.View(func(g *engine.Game) {
		info.Players = g.PlayerCount()
		info.Phase = g.Phase()
	})
	info.LastAccessedAt = sess.LastAccessedAt()
	return info
}
