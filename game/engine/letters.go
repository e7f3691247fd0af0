package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// LetterSet tracks which of the letters a..z have been guessed.
type LetterSet [AlphabetSize]bool

// IsLetter reports whether r is a lowercase ASCII letter.
func IsLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// Has reports whether r has been guessed. Runes outside a..z are never guessed.
func (s *LetterSet) Has(r rune) bool {
	if !IsLetter(r) {
		return false
	}
	return s[r-'a']
}

// Add marks r as guessed and reports whether it was newly added.
func (s *LetterSet) Add(r rune) bool {
	if !IsLetter(r) || s[r-'a'] {
		return false
	}
	s[r-'a'] = true
	return true
}

// Len returns the number of guessed letters.
func (s *LetterSet) Len() int {
	return lo.Count(s[:], true)
}

// Guessed returns the guessed letters in alphabetical order.
func (s *LetterSet) Guessed() []string {
	out := make([]string, 0, AlphabetSize)
	for i, set := range s {
		if set {
			out = append(out, string(rune('a'+i)))
		}
	}
	return out
}

// Alphabet renders the set in its wire form.
func (s *LetterSet) Alphabet() Alphabet {
	letters := make(map[string]bool, AlphabetSize)
	for i, set := range s {
		letters[string(rune('a'+i))] = set
	}
	return Alphabet{Letters: letters}
}

// DistinctLetters returns the distinct a..z letters of word in first-seen order.
// Other characters are ignored.
func DistinctLetters(word string) []rune {
	return lo.Uniq(lo.Filter([]rune(word), func(r rune, _ int) bool {
		return IsLetter(r)
	}))
}

// Exposed reports whether every distinct letter of word has been guessed.
// A word without any a..z letter is never exposed.
func (s *LetterSet) Exposed(word string) bool {
	letters := DistinctLetters(word)
	if len(letters) == 0 {
		return false
	}
	return lo.EveryBy(letters, s.Has)
}

// ParseLetter checks a guessed letter is exactly one of a..z. Input is taken
// as sent: surrounding spaces and uppercase letters are rejected.
func ParseLetter(letter string) (rune, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return 0, invalidInput("letter must be a single character, got %q", letter)
	}
	r, _ := utf8.DecodeRuneInString(letter)
	if !IsLetter(r) {
		return 0, invalidInput("letter must be one of a-z, got %q", letter)
	}
	return r, nil
}

// ValidateWord checks a secret word against the rules. Words are stored
// exactly as sent, so uppercase letters and whitespace are rejected.
func ValidateWord(word string, maxLen int) error {
	if word == "" {
		return invalidInput("word is required")
	}
	if strings.IndexFunc(word, unicode.IsSpace) >= 0 {
		return invalidInput("word must not contain whitespace")
	}
	if strings.IndexFunc(word, unicode.IsUpper) >= 0 {
		return invalidInput("word must be lowercase, got %q", word)
	}
	if maxLen > 0 && utf8.RuneCountInString(word) > maxLen {
		return invalidInput("word must be at most %d characters", maxLen)
	}
	if len(DistinctLetters(word)) == 0 {
		return invalidInput("word must contain at least one letter a-z")
	}
	return nil
}

// NormalizeName trims a display name and checks it against the rules.
func NormalizeName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("name is required")
	}
	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		return "", invalidInput("name must be at most %d characters", maxLen)
	}
	return name, nil
}
