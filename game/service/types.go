package service

import (
	"time"

	"github.com/wricardo/hangmen/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string       `json:"id"`
	RulesName      string       `json:"rules"`
	Players        int          `json:"players"`
	Phase          engine.Phase `json:"phase"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
}

// ActionResult contains the result of a mutating operation
type ActionResult struct {
	PlayerID   string               `json:"player_id,omitempty"`
	Correct    bool                 `json:"correct,omitempty"`
	Eliminated []string             `json:"eliminated,omitempty"`
	Winner     string               `json:"winner,omitempty"`
	State      *engine.SessionState `json:"state"`
	Events     []GameEvent          `json:"events,omitempty"`
}

// EventType names something that happened in a session.
type EventType string

const (
	EventPlayerJoined     EventType = "player_joined"
	EventWordSet          EventType = "word_set"
	EventGameStarted      EventType = "game_started"
	EventLetterGuessed    EventType = "letter_guessed"
	EventPlayerEliminated EventType = "player_eliminated"
	EventWordGuessed      EventType = "word_guessed"
	EventPlayerExited     EventType = "player_exited"
	EventSessionReset     EventType = "session_reset"
	EventGameOver         EventType = "game_over"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	PlayerID  string    `json:"player_id,omitempty"`
	Letter    string    `json:"letter,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RulesInfo provides information about a rules set
type RulesInfo struct {
	Filename    string `json:"filename"`
	RulesID     string `json:"rules_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
}
