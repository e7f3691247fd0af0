package engine

import (
	"errors"
	"fmt"
	"sort"
	"testing"
)

// newTestGame returns a game with predictable ids ("p1", "p2", ...) and a
// turn order that follows join order.
func newTestGame(rules Rules) *Game {
	n := 0
	return NewGame(rules,
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("p%d", n)
		}),
		WithShuffler(func([]string) {}),
	)
}

// startedGame joins one player per word and sets every word.
func startedGame(t *testing.T, words ...string) (*Game, []string) {
	t.Helper()
	g := newTestGame(DefaultRules())
	ids := make([]string, 0, len(words))
	for i := range words {
		id, err := g.Join(fmt.Sprintf("name%d", i+1))
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		ids = append(ids, id)
	}
	for i, w := range words {
		if _, err := g.SetWord(ids[i], w); err != nil {
			t.Fatalf("SetWord(%s, %q) failed: %v", ids[i], w, err)
		}
	}
	return g, ids
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected turn order %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected turn order %v, got %v", want, got)
		}
	}
}

func TestNewGame(t *testing.T) {
	g := NewGame(DefaultRules())

	if !g.IsLobby() {
		t.Error("New game should be in lobby")
	}
	if g.Phase() != PhaseLobby {
		t.Errorf("Expected phase %s, got %s", PhaseLobby, g.Phase())
	}
	if g.PlayerCount() != 0 {
		t.Errorf("Expected 0 players, got %d", g.PlayerCount())
	}
	if len(g.TurnOrder()) != 0 {
		t.Errorf("Expected empty turn order, got %v", g.TurnOrder())
	}
}

func TestNewGame_AppliesRuleDefaults(t *testing.T) {
	g := NewGame(Rules{Name: "bare"})
	rules := g.Rules()

	if rules.MinPlayers != DefaultMinPlayers {
		t.Errorf("Expected MinPlayers %d, got %d", DefaultMinPlayers, rules.MinPlayers)
	}
	if rules.MaxWordLength != DefaultMaxWordLength {
		t.Errorf("Expected MaxWordLength %d, got %d", DefaultMaxWordLength, rules.MaxWordLength)
	}
}

func TestGame_Join(t *testing.T) {
	g := NewGame(DefaultRules())

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := g.Join(fmt.Sprintf("player%d", i))
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("Join returned duplicate id %s", id)
		}
		seen[id] = true

		p, err := g.Player(id)
		if err != nil {
			t.Fatalf("Player(%s) failed: %v", id, err)
		}
		if p.Word != "" || p.Ready() || !p.Alive {
			t.Errorf("Expected fresh player, got %+v", p)
		}
	}
}

func TestGame_Join_RegeneratesCollidingIDs(t *testing.T) {
	ids := []string{"dup", "dup", "dup", "other"}
	g := NewGame(DefaultRules(), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first, _ := g.Join("one")
	second, err := g.Join("two")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if first != "dup" || second != "other" {
		t.Errorf("Expected ids dup/other, got %s/%s", first, second)
	}
}

func TestGame_Join_Validation(t *testing.T) {
	rules := DefaultRules()
	rules.MaxPlayers = 2
	rules.MaxNameLength = 5
	g := NewGame(rules)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty name", "", ErrInvalidInput},
		{"whitespace name", "   ", ErrInvalidInput},
		{"name too long", "abcdefg", ErrInvalidInput},
		{"valid", "alice", nil},
		{"valid second", "bob", nil},
		{"session full", "carol", ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Join(tt.input)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGame_TwoPlayersStayInLobby(t *testing.T) {
	g := newTestGame(DefaultRules())
	g.Join("name1")
	g.Join("name2")

	state := g.State("abc123")
	if len(state.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(state.Players))
	}
	if len(state.TurnOrder) != 0 {
		t.Errorf("Expected empty turn order, got %v", state.TurnOrder)
	}
	if !state.IsLobby {
		t.Error("Expected session to be in lobby")
	}
}

func TestGame_SetWord(t *testing.T) {
	g := newTestGame(DefaultRules())
	p1, _ := g.Join("name1")
	p2, _ := g.Join("name2")

	for _, word := range []string{"Banana", "  banana ", "BANANA"} {
		if _, err := g.SetWord(p1, word); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SetWord(%q): expected ErrInvalidInput, got %v", word, err)
		}
	}
	if p, _ := g.Player(p1); p.Ready() {
		t.Fatal("Rejected words must not make the player ready")
	}

	started, err := g.SetWord(p1, "banana")
	if err != nil {
		t.Fatalf("SetWord failed: %v", err)
	}
	if started {
		t.Error("Game should not start while a player is not ready")
	}

	p, _ := g.Player(p1)
	if p.Word != "banana" {
		t.Errorf("Expected word banana, got %q", p.Word)
	}
	if !p.Ready() {
		t.Error("Player should be ready after setting a word")
	}

	if _, err := g.SetWord(p1, "apple"); !errors.Is(err, ErrWordAlreadySet) {
		t.Errorf("Expected ErrWordAlreadySet, got %v", err)
	}

	started, err = g.SetWord(p2, "apple")
	if err != nil {
		t.Fatalf("SetWord failed: %v", err)
	}
	if !started {
		t.Error("Game should start once all players are ready")
	}
	if g.IsLobby() {
		t.Error("Game should have left the lobby")
	}
}

func TestGame_SetWord_Errors(t *testing.T) {
	g := newTestGame(DefaultRules())
	p1, _ := g.Join("name1")

	tests := []struct {
		name    string
		pid     string
		word    string
		wantErr error
	}{
		{"unknown player", "nope", "word", ErrNotFound},
		{"empty word", p1, "", ErrInvalidInput},
		{"whitespace inside", p1, "two words", ErrInvalidInput},
		{"no letters", p1, "12345", ErrInvalidInput},
		{"too long", p1, "abcdefghijklmnopqrstuvwxyzabcdefghij", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.SetWord(tt.pid, tt.word)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	p, _ := g.Player(p1)
	if p.Ready() {
		t.Error("Failed SetWord calls must not change the player")
	}
}

func TestGame_SetWord_AfterActivation(t *testing.T) {
	g, _ := startedGame(t, "word1", "word2")
	late, _ := g.Join("late")

	if _, err := g.SetWord(late, "late"); !errors.Is(err, ErrNotInLobby) {
		t.Errorf("Expected ErrNotInLobby, got %v", err)
	}
}

func TestGame_SinglePlayerNeverActivates(t *testing.T) {
	g := newTestGame(DefaultRules())
	p1, _ := g.Join("solo")

	started, err := g.SetWord(p1, "lonely")
	if err != nil {
		t.Fatalf("SetWord failed: %v", err)
	}
	if started || !g.IsLobby() {
		t.Error("A single ready player must not start the game")
	}
}

func TestGame_ActivationRespectsMinPlayers(t *testing.T) {
	rules := DefaultRules()
	rules.MinPlayers = 3
	g := newTestGame(rules)
	p1, _ := g.Join("name1")
	p2, _ := g.Join("name2")
	g.SetWord(p1, "one")
	g.SetWord(p2, "two")

	if !g.IsLobby() {
		t.Fatal("Game should wait for a third player")
	}

	p3, _ := g.Join("name3")
	if started, _ := g.SetWord(p3, "three"); !started {
		t.Error("Game should start with three ready players")
	}
}

func TestGame_ActivationTurnOrderIsPermutation(t *testing.T) {
	g := NewGame(DefaultRules())
	ids := make([]string, 0, 3)
	for _, name := range []string{"name1", "name2", "name3"} {
		id, _ := g.Join(name)
		ids = append(ids, id)
	}
	for i, w := range []string{"word1", "word2", "word3"} {
		g.SetWord(ids[i], w)
	}

	state := g.State("sid")
	if state.IsLobby {
		t.Fatal("Expected session to be active")
	}

	got := append([]string{}, state.TurnOrder...)
	sort.Strings(got)
	sort.Strings(ids)
	assertOrder(t, got, ids)

	for id, p := range state.Players {
		if !p.Ready {
			t.Errorf("Player %s should be ready", id)
		}
	}
}

func TestGame_LateJoinerNotInTurnOrder(t *testing.T) {
	g, ids := startedGame(t, "word1", "word2")

	late, err := g.Join("late")
	if err != nil {
		t.Fatalf("Join during active phase failed: %v", err)
	}

	assertOrder(t, g.TurnOrder(), ids)
	p, _ := g.Player(late)
	if !p.Alive {
		t.Error("Late joiner should start alive")
	}
}

func TestGame_Exit(t *testing.T) {
	t.Run("unknown player", func(t *testing.T) {
		g := newTestGame(DefaultRules())
		if _, err := g.Exit("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lobby exit starts waiting game", func(t *testing.T) {
		g := newTestGame(DefaultRules())
		p1, _ := g.Join("name1")
		p2, _ := g.Join("name2")
		p3, _ := g.Join("name3")
		g.SetWord(p1, "one")
		g.SetWord(p2, "two")

		out, err := g.Exit(p3)
		if err != nil {
			t.Fatalf("Exit failed: %v", err)
		}
		if !out.Started {
			t.Error("Expected the remaining ready players to start")
		}
		assertOrder(t, g.TurnOrder(), []string{p1, p2})
	})

	t.Run("active exit removes and rotates", func(t *testing.T) {
		g, ids := startedGame(t, "one", "two", "three", "four")

		out, err := g.Exit(ids[1])
		if err != nil {
			t.Fatalf("Exit failed: %v", err)
		}
		if out.Concluded {
			t.Error("Game should still be active")
		}
		assertOrder(t, g.TurnOrder(), []string{ids[2], ids[3], ids[0]})
		if _, err := g.Player(ids[1]); !errors.Is(err, ErrPlayerNotFound) {
			t.Errorf("Exited player should be gone, got %v", err)
		}
	})

	t.Run("exit down to one player concludes", func(t *testing.T) {
		g, ids := startedGame(t, "one", "two")

		out, err := g.Exit(ids[0])
		if err != nil {
			t.Fatalf("Exit failed: %v", err)
		}
		if !out.Concluded || out.Winner != ids[1] {
			t.Errorf("Expected conclusion with winner %s, got %+v", ids[1], out)
		}
	})
}

func TestGame_Reset(t *testing.T) {
	g, ids := startedGame(t, "banana", "apple")
	g.GuessLetter("b")
	g.GuessLetter("a")
	g.GuessLetter("n")

	g.Reset()

	state := g.State("sid")
	if !state.IsLobby {
		t.Error("Reset should return to lobby")
	}
	if len(state.TurnOrder) != 0 {
		t.Errorf("Reset should clear turn order, got %v", state.TurnOrder)
	}
	for letter, guessed := range state.Alphabet.Letters {
		if guessed {
			t.Errorf("Letter %s should be cleared", letter)
		}
	}
	if len(state.Players) != len(ids) {
		t.Fatalf("Reset should keep the roster, got %d players", len(state.Players))
	}
	for _, id := range ids {
		p := state.Players[id]
		if p.Word != "" || p.Ready || !p.Alive {
			t.Errorf("Player %s not reset: %+v", id, p)
		}
	}
}

func TestGame_State(t *testing.T) {
	g := newTestGame(DefaultRules())
	state := g.State("abc123")

	if state.ID != "abc123" {
		t.Errorf("Expected id abc123, got %s", state.ID)
	}
	if state.TurnOrder == nil {
		t.Error("Turn order should be an empty slice, not nil")
	}
	if len(state.Alphabet.Letters) != AlphabetSize {
		t.Errorf("Expected %d letters, got %d", AlphabetSize, len(state.Alphabet.Letters))
	}
	if state.Players == nil {
		t.Error("Players should be an empty map, not nil")
	}
}

func TestGame_StateIsSnapshot(t *testing.T) {
	g, _ := startedGame(t, "one", "two")
	state := g.State("sid")

	state.TurnOrder[0] = "mutated"
	if g.TurnOrder()[0] == "mutated" {
		t.Error("Mutating a snapshot must not affect the game")
	}
}

func TestGame_LobbyIffEmptyTurnOrder(t *testing.T) {
	g := newTestGame(DefaultRules())
	check := func() {
		t.Helper()
		if g.IsLobby() != (len(g.TurnOrder()) == 0) {
			t.Fatalf("lobby=%v with turn order %v", g.IsLobby(), g.TurnOrder())
		}
	}

	check()
	p1, _ := g.Join("name1")
	check()
	p2, _ := g.Join("name2")
	g.SetWord(p1, "alpha")
	check()
	g.SetWord(p2, "beta")
	check()
	g.GuessLetter("z")
	check()
}
