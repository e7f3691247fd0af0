package engine

// Phase is the derived lifecycle stage of a game.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseActive    Phase = "active"
	PhaseConcluded Phase = "concluded"

	// Validation constants
	AlphabetSize         = 26
	DefaultMinPlayers    = 2
	DefaultMaxWordLength = 32
	DefaultMaxNameLength = 32
	MaxWordLengthLimit   = 256
	MaxNameLengthLimit   = 256
)

// Player is a participant in a single game.
type Player struct {
	ID    string
	Name  string
	Word  string
	Alive bool
}

// Ready reports whether the player has committed a word.
func (p *Player) Ready() bool {
	return p.Word != ""
}

// PlayerState is the wire view of a player.
type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Word  string `json:"word"`
	Ready bool   `json:"ready"`
	Alive bool   `json:"alive"`
}

// Alphabet is the wire view of the guessed letters. Letters always carries
// all 26 lowercase letters.
type Alphabet struct {
	Letters map[string]bool `json:"letters"`
}

// SessionState is a point-in-time snapshot of a session.
type SessionState struct {
	ID        string                 `json:"id"`
	Players   map[string]PlayerState `json:"players"`
	TurnOrder []string               `json:"turnOrder"`
	Alphabet  Alphabet               `json:"alphabet"`
	IsLobby   bool                   `json:"isLobby"`
}

// Outcome describes the effect of a guess or an exit.
type Outcome struct {
	// Eliminated lists the players knocked out, in turn order.
	Eliminated []string
	// Concluded is set when this action moved the game into PhaseConcluded.
	Concluded bool
	// Winner is the remaining player once the game has concluded, if any.
	Winner string
	// Started is set when an exit let a waiting lobby start.
	Started bool
}
