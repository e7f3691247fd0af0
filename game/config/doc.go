// Package config provides rules set management for Hangmen.
//
// The config package handles:
//   - Loading rules sets from YAML files
//   - Rules validation
//   - Default rules management
//   - Rules discovery and listing
//
// Rules Format:
//
// Rules sets are stored as YAML files in the rules directory, one file per
// set. The file name without extension is the identifier clients pass when
// creating a session:
//
//	name: classic
//	description: Everyone commits a word, last word standing wins
//	min_players: 2
//	max_players: 0        # 0 means unlimited
//	max_word_length: 32
//	max_name_length: 32
//
// Omitted limits take the built-in defaults. When no classic file exists the
// built-in classic rules are used and listed.
//
// Usage:
//
//	manager, err := config.NewManager("rules")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadRules("party")
//	defaultRules := manager.GetDefault()
//	all, err := manager.ListRules()
package config
