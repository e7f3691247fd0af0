package engine

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// Game is the state of a single session. It is not safe for concurrent use.
type Game struct {
	rules     Rules
	players   map[string]*Player
	joinOrder []string
	turnOrder []string
	guessed   LetterSet
	lobby     bool

	newID   func() string
	shuffle func([]string)
}

// Option configures a Game.
type Option func(*Game)

// WithIDGenerator overrides how player ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(g *Game) {
		g.newID = gen
	}
}

// WithShuffler overrides how the turn order is permuted on activation.
func WithShuffler(shuffle func([]string)) Option {
	return func(g *Game) {
		g.shuffle = shuffle
	}
}

// NewGame creates a game in the lobby with no players.
func NewGame(rules Rules, opts ...Option) *Game {
	rules.ApplyDefaults()
	g := &Game{
		rules:   rules,
		players: make(map[string]*Player),
		lobby:   true,
		newID:   uuid.NewString,
		shuffle: mutable.Shuffle[string, []string],
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules {
	return g.rules
}

// IsLobby reports whether the game is still waiting for players.
func (g *Game) IsLobby() bool {
	return g.lobby
}

// Phase derives the lifecycle stage from the lobby flag and the turn queue.
func (g *Game) Phase() Phase {
	switch {
	case g.lobby:
		return PhaseLobby
	case len(g.turnOrder) <= 1:
		return PhaseConcluded
	default:
		return PhaseActive
	}
}

// Winner returns the last player standing once the game has concluded.
func (g *Game) Winner() (string, bool) {
	if g.Phase() != PhaseConcluded || len(g.turnOrder) == 0 {
		return "", false
	}
	return g.turnOrder[0], true
}

// CurrentTurn returns the player whose turn it is.
func (g *Game) CurrentTurn() (string, bool) {
	if g.Phase() != PhaseActive {
		return "", false
	}
	return g.turnOrder[0], true
}

// Player returns a copy of the player with the given id.
func (g *Game) Player(pid string) (Player, error) {
	p, ok := g.players[pid]
	if !ok {
		return Player{}, ErrPlayerNotFound
	}
	return *p, nil
}

// PlayerCount returns the number of players in the roster.
func (g *Game) PlayerCount() int {
	return len(g.players)
}

// TurnOrder returns a copy of the turn queue.
func (g *Game) TurnOrder() []string {
	return append([]string{}, g.turnOrder...)
}

// GuessedLetters returns a copy of the guessed letter set.
func (g *Game) GuessedLetters() LetterSet {
	return g.guessed
}

// Join adds a player and returns its id. Players may join during any phase;
// anyone joining after activation never enters the turn order.
func (g *Game) Join(name string) (string, error) {
	name, err := NormalizeName(name, g.rules.MaxNameLength)
	if err != nil {
		return "", err
	}
	if g.rules.MaxPlayers > 0 && len(g.players) >= g.rules.MaxPlayers {
		return "", ErrSessionFull
	}

	id := g.newID()
	for g.players[id] != nil {
		id = g.newID()
	}

	g.players[id] = &Player{ID: id, Name: name, Alive: true}
	g.joinOrder = append(g.joinOrder, id)
	return id, nil
}

// SetWord commits a player's secret word and starts the game when everyone
// is ready. It reports whether this call started the game.
func (g *Game) SetWord(pid, word string) (bool, error) {
	p, ok := g.players[pid]
	if !ok {
		return false, ErrPlayerNotFound
	}
	if !g.lobby {
		return false, ErrNotInLobby
	}
	if p.Ready() {
		return false, ErrWordAlreadySet
	}

	if err := ValidateWord(word, g.rules.MaxWordLength); err != nil {
		return false, err
	}

	p.Word = word
	return g.maybeActivate(), nil
}

// maybeActivate leaves the lobby once enough players are present and all of them are ready.
func (g *Game) maybeActivate() bool {
	if !g.lobby || len(g.players) < g.rules.MinPlayers {
		return false
	}
	if !lo.EveryBy(lo.Values(g.players), (*Player).Ready) {
		return false
	}

	order := append([]string{}, g.joinOrder...)
	g.shuffle(order)
	g.turnOrder = order
	g.lobby = false
	return true
}

// Exit removes a player from the roster. If the player was in the turn
// order it is removed there as well and the queue is rotated.
func (g *Game) Exit(pid string) (Outcome, error) {
	if _, ok := g.players[pid]; !ok {
		return Outcome{}, ErrPlayerNotFound
	}

	before := g.Phase()
	delete(g.players, pid)
	g.joinOrder = lo.Without(g.joinOrder, pid)

	var out Outcome
	if lo.Contains(g.turnOrder, pid) {
		g.removeFromTurnOrder([]string{pid})
		g.rotate()
	}

	if g.lobby {
		out.Started = g.maybeActivate()
		return out, nil
	}

	g.fillConclusion(before, &out)
	return out, nil
}

// Reset returns the game to the lobby. The roster and ids are kept; words,
// readiness, liveness, turn order and guessed letters are cleared.
func (g *Game) Reset() {
	g.lobby = true
	g.turnOrder = nil
	g.guessed = LetterSet{}
	for _, p := range g.players {
		p.Word = ""
		p.Alive = true
	}
}

// State returns a snapshot of the game labelled with the session id.
func (g *Game) State(sid string) SessionState {
	players := make(map[string]PlayerState, len(g.players))
	for id, p := range g.players {
		players[id] = PlayerState{
			ID:    p.ID,
			Name:  p.Name,
			Word:  p.Word,
			Ready: p.Ready(),
			Alive: p.Alive,
		}
	}

	return SessionState{
		ID:        sid,
		Players:   players,
		TurnOrder: g.TurnOrder(),
		Alphabet:  g.guessed.Alphabet(),
		IsLobby:   g.lobby,
	}
}

func (g *Game) fillConclusion(before Phase, out *Outcome) {
	if before == PhaseActive && g.Phase() == PhaseConcluded {
		out.Concluded = true
		out.Winner, _ = g.Winner()
	}
}
