package engine

import "github.com/samber/lo"

// GuessLetter adds a letter to the guessed set and eliminates every player in
// the turn order whose word is now fully exposed. Eliminated players are
// removed from the queue, then the queue rotates by one.
//
// Guessing a letter that was already guessed changes nothing, including the turn.
func (g *Game) GuessLetter(letter string) (Outcome, error) {
	r, err := ParseLetter(letter)
	if err != nil {
		return Outcome{}, err
	}
	if err := g.checkGuessable(); err != nil {
		return Outcome{}, err
	}

	if !g.guessed.Add(r) {
		return Outcome{}, nil
	}

	before := g.Phase()
	exposed := lo.Filter(g.turnOrder, func(pid string, _ int) bool {
		return g.guessed.Exposed(g.players[pid].Word)
	})

	out := Outcome{Eliminated: exposed}
	g.eliminate(exposed)
	g.fillConclusion(before, &out)
	return out, nil
}

// GuessWord compares a full word guess against a target player's word. A
// wrong guess changes nothing. A correct guess eliminates the target exactly
// as a completed word would. It reports whether the guess was correct.
func (g *Game) GuessWord(pid, word string) (bool, Outcome, error) {
	target, ok := g.players[pid]
	if !ok {
		return false, Outcome{}, ErrPlayerNotFound
	}
	if err := ValidateWord(word, 0); err != nil {
		return false, Outcome{}, err
	}
	if err := g.checkGuessable(); err != nil {
		return false, Outcome{}, err
	}
	if !lo.Contains(g.turnOrder, pid) {
		return false, Outcome{}, ErrNotInTurnOrder
	}

	if word != target.Word {
		return false, Outcome{}, nil
	}

	before := g.Phase()
	out := Outcome{Eliminated: []string{pid}}
	g.eliminate(out.Eliminated)
	g.fillConclusion(before, &out)
	return true, out, nil
}

func (g *Game) checkGuessable() error {
	switch g.Phase() {
	case PhaseLobby:
		return ErrInLobby
	case PhaseConcluded:
		return ErrGameConcluded
	}
	return nil
}

// eliminate marks the given players dead, drops them from the turn order and
// advances the turn.
func (g *Game) eliminate(pids []string) {
	for _, pid := range pids {
		g.players[pid].Alive = false
	}
	g.removeFromTurnOrder(pids)
	g.rotate()
}

func (g *Game) removeFromTurnOrder(pids []string) {
	if len(pids) == 0 {
		return
	}
	g.turnOrder = lo.Without(g.turnOrder, pids...)
}

// rotate moves the front of the turn order to the back.
func (g *Game) rotate() {
	if len(g.turnOrder) == 0 {
		return
	}
	front := g.turnOrder[0]
	copy(g.turnOrder, g.turnOrder[1:])
	g.turnOrder[len(g.turnOrder)-1] = front
}
