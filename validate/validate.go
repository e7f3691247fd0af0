// Command validate checks the rules YAML files in a rules directory. It checks:
//   - YAML structure and unknown keys
//   - Required fields and player/length limits
//   - That the name field matches the file name clients use to select it
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/hangmen/game/config"
	"github.com/wricardo/hangmen/game/engine"
	"gopkg.in/yaml.v3"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages contains informational lines; otherwise it
// holds the errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// validateRulesFile loads and validates a single rules file.
func validateRulesFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(filePath),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	// Unknown keys would otherwise fall back to defaults silently.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw engine.Rules
	if err := dec.Decode(&raw); err != nil {
		result.fail("Invalid YAML: %v", err)
		return result
	}

	rules, err := config.ParseRules(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	id := strings.ToLower(strings.TrimSuffix(result.File, filepath.Ext(result.File)))
	if rules.Name != id {
		result.fail("name %q does not match file name %q", rules.Name, id)
		return result
	}

	maxPlayers := "unlimited"
	if rules.MaxPlayers > 0 {
		maxPlayers = fmt.Sprint(rules.MaxPlayers)
	}
	result.Messages = append(result.Messages,
		fmt.Sprintf("✓ Name: %s", rules.Name),
		fmt.Sprintf("✓ Players: %d to %s", rules.MinPlayers, maxPlayers),
		fmt.Sprintf("✓ Max word length: %d", rules.MaxWordLength),
		fmt.Sprintf("✓ Max name length: %d", rules.MaxNameLength),
	)
	return result
}

// validateDir validates every rules file in dir and writes a report to w.
// It reports whether all files were valid.
func validateDir(dir string, w io.Writer) (bool, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return false, fmt.Errorf("finding rules files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no rules files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateRulesFile(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, msg := range result.Messages {
			fmt.Fprintln(w, "  ❌ "+msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All rules files are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some rules files have errors")
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate Hangmen rules files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "../rules",
				Usage:   "Directory containing rules YAML files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.String("dir"), cmd.Root().Writer)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("some rules files have errors")
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
