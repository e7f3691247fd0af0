package engine

import (
	"errors"
	"testing"
)

func TestLetterSet(t *testing.T) {
	var s LetterSet

	if s.Len() != 0 {
		t.Errorf("Expected empty set, got %d letters", s.Len())
	}
	if !s.Add('c') {
		t.Error("First Add should report a new letter")
	}
	if s.Add('c') {
		t.Error("Second Add should report a duplicate")
	}
	if s.Add('1') {
		t.Error("Non-letters cannot be added")
	}
	if !s.Has('c') || s.Has('d') {
		t.Error("Has reports wrong membership")
	}

	alphabet := s.Alphabet()
	if len(alphabet.Letters) != AlphabetSize {
		t.Fatalf("Expected %d letters, got %d", AlphabetSize, len(alphabet.Letters))
	}
	if !alphabet.Letters["c"] || alphabet.Letters["a"] {
		t.Errorf("Unexpected alphabet %v", alphabet.Letters)
	}
}

func TestDistinctLetters(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"banana", "ban"},
		{"test_word1", "tesword"},
		{"123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got := string(DistinctLetters(tt.word))
			if got != tt.want {
				t.Errorf("DistinctLetters(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestLetterSet_Exposed(t *testing.T) {
	var s LetterSet
	for _, r := range "ban" {
		s.Add(r)
	}

	tests := []struct {
		word string
		want bool
	}{
		{"banana", true},
		{"nab", true},
		{"apple", false},
		{"ban-1", true},
		{"123", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := s.Exposed(tt.word); got != tt.want {
				t.Errorf("Exposed(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestValidateWord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxLen  int
		wantErr bool
	}{
		{"lowercase", "banana", 10, false},
		{"keeps digits", "test_word1", 10, false},
		{"no limit", "abcdefghijklmnopqrstuvwxyz", 0, false},
		{"uppercase", "Banana", 10, true},
		{"all caps", "APPLE", 10, true},
		{"leading space", " apple", 10, true},
		{"trailing newline", "apple\n", 10, true},
		{"empty", "", 10, true},
		{"inner space", "two words", 20, true},
		{"over limit", "abcdef", 5, true},
		{"digits only", "2024", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWord(tt.input, tt.maxLen)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestParseLetter(t *testing.T) {
	for _, letter := range []string{"a", "m", "z"} {
		if r, err := ParseLetter(letter); err != nil || string(r) != letter {
			t.Errorf("ParseLetter(%q) = %q, %v", letter, r, err)
		}
	}
	for _, letter := range []string{"A", "Q", " a", "a ", "ab", "", "1", "é"} {
		if _, err := ParseLetter(letter); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseLetter(%q): expected ErrInvalidInput, got %v", letter, err)
		}
	}
}
