package engine

import "fmt"

// Rules is a named rules set a session is created with.
type Rules struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	MinPlayers    int    `json:"min_players" yaml:"min_players"`
	MaxPlayers    int    `json:"max_players" yaml:"max_players"` // 0 means unlimited
	MaxWordLength int    `json:"max_word_length" yaml:"max_word_length"`
	MaxNameLength int    `json:"max_name_length" yaml:"max_name_length"`
}

// DefaultRules returns the built-in "classic" rules.
func DefaultRules() Rules {
	return Rules{
		Name:          "classic",
		Description:   "Everyone commits a word, last word standing wins",
		MinPlayers:    DefaultMinPlayers,
		MaxPlayers:    0,
		MaxWordLength: DefaultMaxWordLength,
		MaxNameLength: DefaultMaxNameLength,
	}
}

// ApplyDefaults fills zero-valued limits with the built-in defaults.
func (r *Rules) ApplyDefaults() {
	if r.MinPlayers == 0 {
		r.MinPlayers = DefaultMinPlayers
	}
	if r.MaxWordLength == 0 {
		r.MaxWordLength = DefaultMaxWordLength
	}
	if r.MaxNameLength == 0 {
		r.MaxNameLength = DefaultMaxNameLength
	}
}

// ValidateRules validates a rules set for correctness and playability
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules validation: rules are nil")
	}
	if rules.Name == "" {
		return fmt.Errorf("rules validation: name is required")
	}
	if rules.Description == "" {
		return fmt.Errorf("rules validation: description is required")
	}

	if rules.MinPlayers < DefaultMinPlayers {
		return fmt.Errorf("rules validation: min_players must be at least %d, got %d", DefaultMinPlayers, rules.MinPlayers)
	}
	if rules.MaxPlayers < 0 {
		return fmt.Errorf("rules validation: max_players must not be negative, got %d", rules.MaxPlayers)
	}
	if rules.MaxPlayers != 0 && rules.MaxPlayers < rules.MinPlayers {
		return fmt.Errorf("rules validation: max_players (%d) must be 0 or at least min_players (%d)",
			rules.MaxPlayers, rules.MinPlayers)
	}

	if rules.MaxWordLength < 1 || rules.MaxWordLength > MaxWordLengthLimit {
		return fmt.Errorf("rules validation: max_word_length must be between 1 and %d, got %d", MaxWordLengthLimit, rules.MaxWordLength)
	}
	if rules.MaxNameLength < 1 || rules.MaxNameLength > MaxNameLengthLimit {
		return fmt.Errorf("rules validation: max_name_length must be between 1 and %d, got %d", MaxNameLengthLimit, rules.MaxNameLength)
	}

	return nil
}
