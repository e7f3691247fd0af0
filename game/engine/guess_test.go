package engine

import (
	"errors"
	"testing"
)

func TestGuessLetter_InLobby(t *testing.T) {
	g := newTestGame(DefaultRules())
	g.Join("name1")

	if _, err := g.GuessLetter("a"); !errors.Is(err, ErrInLobby) {
		t.Errorf("Expected ErrInLobby, got %v", err)
	}
	if guessed := g.GuessedLetters(); guessed.Len() != 0 {
		t.Error("Rejected guess must not record the letter")
	}
}

func TestGuessLetter_InvalidInput(t *testing.T) {
	g, _ := startedGame(t, "banana", "apple")

	for _, letter := range []string{"", "ab", "1", "_", "é"} {
		t.Run(letter, func(t *testing.T) {
			if _, err := g.GuessLetter(letter); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for %q, got %v", letter, err)
			}
		})
	}
}

func TestGuessLetter_RejectsNonLowercase(t *testing.T) {
	g, ids := startedGame(t, "banana", "apple")

	for _, letter := range []string{"A", " a", "Q", " q ", "B"} {
		t.Run(letter, func(t *testing.T) {
			if _, err := g.GuessLetter(letter); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for %q, got %v", letter, err)
			}
			assertOrder(t, g.TurnOrder(), ids)
			if set := g.GuessedLetters(); set.Len() != 0 {
				t.Errorf("Expected no guessed letters, got %v", set.Guessed())
			}
		})
	}
}

func TestGuessLetter_NeutralGuessesRotate(t *testing.T) {
	g, ids := startedGame(t, "banana", "apple", "cashew")

	g.GuessLetter("z")
	assertOrder(t, g.TurnOrder(), []string{ids[1], ids[2], ids[0]})

	g.GuessLetter("y")
	assertOrder(t, g.TurnOrder(), []string{ids[2], ids[0], ids[1]})

	g.GuessLetter("x")
	assertOrder(t, g.TurnOrder(), ids)
}

func TestGuessLetter_DuplicateIsNoop(t *testing.T) {
	g, _ := startedGame(t, "banana", "apple", "cashew")

	g.GuessLetter("z")
	before := g.State("sid")

	out, err := g.GuessLetter("z")
	if err != nil {
		t.Fatalf("Duplicate guess should not error: %v", err)
	}
	if len(out.Eliminated) != 0 {
		t.Errorf("Duplicate guess eliminated %v", out.Eliminated)
	}

	after := g.State("sid")
	assertOrder(t, after.TurnOrder, before.TurnOrder)
	for letter, guessed := range before.Alphabet.Letters {
		if after.Alphabet.Letters[letter] != guessed {
			t.Errorf("Letter %s changed on duplicate guess", letter)
		}
	}
}

func TestGuessLetter_BananaAppleCashew(t *testing.T) {
	g, ids := startedGame(t, "banana", "apple", "cashew")
	banana := ids[0]

	for _, letter := range []string{"b", "a"} {
		out, err := g.GuessLetter(letter)
		if err != nil {
			t.Fatalf("GuessLetter(%s) failed: %v", letter, err)
		}
		if len(out.Eliminated) != 0 {
			t.Fatalf("GuessLetter(%s) eliminated %v", letter, out.Eliminated)
		}
	}
	// [banana, apple, cashew] rotated twice
	assertOrder(t, g.TurnOrder(), []string{ids[2], ids[0], ids[1]})

	out, err := g.GuessLetter("n")
	if err != nil {
		t.Fatalf("GuessLetter(n) failed: %v", err)
	}
	if len(out.Eliminated) != 1 || out.Eliminated[0] != banana {
		t.Fatalf("Expected only %s eliminated, got %v", banana, out.Eliminated)
	}

	// banana removed from [cashew, banana, apple], then rotated
	assertOrder(t, g.TurnOrder(), []string{ids[1], ids[2]})

	state := g.State("sid")
	if state.Players[banana].Alive {
		t.Error("banana player should be dead")
	}
	for _, id := range ids[1:] {
		if !state.Players[id].Alive {
			t.Errorf("Player %s should be alive", id)
		}
	}

	guessed := g.GuessedLetters()
	got := guessed.Guessed()
	want := []string{"a", "b", "n"}
	if len(got) != len(want) {
		t.Fatalf("Expected guessed %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected guessed %v, got %v", want, got)
		}
	}
}

func TestGuessLetter_DuplicateInSequence(t *testing.T) {
	withDup, _ := startedGame(t, "banana", "apple", "cashew")
	for _, l := range []string{"a", "b", "b", "c"} {
		withDup.GuessLetter(l)
	}

	without, _ := startedGame(t, "banana", "apple", "cashew")
	for _, l := range []string{"a", "b", "c"} {
		without.GuessLetter(l)
	}

	assertOrder(t, withDup.TurnOrder(), without.TurnOrder())
}

func TestGuessLetter_SimultaneousEliminationConcludes(t *testing.T) {
	g, ids := startedGame(t, "ab", "ba", "cd")

	g.GuessLetter("a")
	out, err := g.GuessLetter("b")
	if err != nil {
		t.Fatalf("GuessLetter failed: %v", err)
	}

	if len(out.Eliminated) != 2 {
		t.Fatalf("Expected two eliminations, got %v", out.Eliminated)
	}
	if !out.Concluded || out.Winner != ids[2] {
		t.Errorf("Expected conclusion with winner %s, got %+v", ids[2], out)
	}
	if g.Phase() != PhaseConcluded {
		t.Errorf("Expected phase %s, got %s", PhaseConcluded, g.Phase())
	}

	if _, err := g.GuessLetter("c"); !errors.Is(err, ErrGameConcluded) {
		t.Errorf("Expected ErrGameConcluded, got %v", err)
	}
}

func TestGuessLetter_EveryoneEliminated(t *testing.T) {
	g, _ := startedGame(t, "ab", "ba")
	g.GuessLetter("a")
	out, _ := g.GuessLetter("b")

	if len(g.TurnOrder()) != 0 {
		t.Errorf("Expected empty turn order, got %v", g.TurnOrder())
	}
	if !out.Concluded || out.Winner != "" {
		t.Errorf("Expected conclusion without a winner, got %+v", out)
	}
	if g.IsLobby() {
		t.Error("An emptied queue must not return to lobby")
	}
}

func TestGuessLetter_NonLettersNeverNeedGuessing(t *testing.T) {
	g, ids := startedGame(t, "test_word1", "zzz")

	for _, l := range []string{"t", "e", "s", "w", "o", "r"} {
		g.GuessLetter(l)
	}
	if p, _ := g.Player(ids[0]); !p.Alive {
		t.Fatal("Player should survive until d is guessed")
	}

	out, _ := g.GuessLetter("d")
	if len(out.Eliminated) != 1 || out.Eliminated[0] != ids[0] {
		t.Errorf("Expected %s eliminated, got %v", ids[0], out.Eliminated)
	}
}

func TestGuessLetter_LateJoinerNeverEliminated(t *testing.T) {
	g, _ := startedGame(t, "one", "two")
	late, _ := g.Join("late")

	g.GuessLetter("q")
	if p, _ := g.Player(late); !p.Alive {
		t.Error("Players outside the turn order are never eliminated")
	}
}

func TestGuessWord(t *testing.T) {
	t.Run("wrong guess is a noop", func(t *testing.T) {
		g, ids := startedGame(t, "banana", "apple", "cashew")

		correct, out, err := g.GuessWord(ids[1], "orange")
		if err != nil {
			t.Fatalf("GuessWord failed: %v", err)
		}
		if correct || len(out.Eliminated) != 0 {
			t.Errorf("Expected wrong guess, got correct=%v out=%+v", correct, out)
		}
		assertOrder(t, g.TurnOrder(), ids)
	})

	t.Run("correct guess eliminates and rotates", func(t *testing.T) {
		g, ids := startedGame(t, "banana", "apple", "cashew")

		correct, out, err := g.GuessWord(ids[1], "apple")
		if err != nil {
			t.Fatalf("GuessWord failed: %v", err)
		}
		if !correct {
			t.Fatal("Expected correct guess")
		}
		if len(out.Eliminated) != 1 || out.Eliminated[0] != ids[1] {
			t.Errorf("Expected %s eliminated, got %v", ids[1], out.Eliminated)
		}
		assertOrder(t, g.TurnOrder(), []string{ids[2], ids[0]})
		if p, _ := g.Player(ids[1]); p.Alive {
			t.Error("Target should be dead")
		}
	})

	t.Run("errors", func(t *testing.T) {
		g, ids := startedGame(t, "banana", "apple", "cashew")
		late, _ := g.Join("late")

		tests := []struct {
			name    string
			pid     string
			word    string
			wantErr error
		}{
			{"unknown player", "nope", "word", ErrNotFound},
			{"empty word", ids[0], "", ErrInvalidInput},
			{"uppercase word", ids[1], "APPLE", ErrInvalidInput},
			{"player outside turn order", late, "word", ErrNotInTurnOrder},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := g.GuessWord(tt.pid, tt.word)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("in lobby", func(t *testing.T) {
		g := newTestGame(DefaultRules())
		p1, _ := g.Join("name1")

		if _, _, err := g.GuessWord(p1, "word"); !errors.Is(err, ErrInLobby) {
			t.Errorf("Expected ErrInLobby, got %v", err)
		}
	})
}
