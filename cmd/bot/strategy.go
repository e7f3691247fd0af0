package main

import "github.com/wricardo/hangmen/game/engine"

// frequencyOrder lists English letters from most to least common.
const frequencyOrder = "etaoinshrdlcumwfgypbvkjxqz"

// Strategy picks letters that hurt opponents before they hurt us: common
// letters first, and letters from our own word only once nothing else is left.
type Strategy struct {
	own map[rune]bool
}

func NewStrategy(word string) *Strategy {
	own := make(map[rune]bool)
	for _, l := range engine.DistinctLetters(word) {
		own[l] = true
	}
	return &Strategy{own: own}
}

// NextLetter returns the next letter to guess, or false when all 26 letters
// have been guessed.
func (s *Strategy) NextLetter(guessed map[string]bool) (string, bool) {
	var fallback string
	for _, l := range frequencyOrder {
		letter := string(l)
		if guessed[letter] {
			continue
		}
		if !s.own[l] {
			return letter, true
		}
		if fallback == "" {
			fallback = letter
		}
	}
	return fallback, fallback != ""
}
