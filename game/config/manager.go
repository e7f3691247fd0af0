package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/hangmen/game/engine"
	"github.com/wricardo/hangmen/game/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrRulesNotFound = errors.New("rules not found")
	ErrInvalidRules  = errors.New("invalid rules")
)

// DefaultRulesName is the rules set used when none is requested.
const DefaultRulesName = "classic"

var extensions = []string{".yaml", ".yml"}

// Manager handles rules set loading and caching
type Manager struct {
	rulesDir     string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new rules manager. A missing directory is not an
// error: only the built-in rules are available then.
func NewManager(rulesDir string) (*Manager, error) {
	if info, err := os.Stat(rulesDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", rulesDir)
	}

	m := &Manager{
		rulesDir: rulesDir,
		rules:    make(map[string]*engine.Rules),
	}

	if err := m.loadDefaultRules(); err != nil {
		return nil, fmt.Errorf("failed to load default rules: %w", err)
	}

	return m, nil
}

// LoadRules loads a rules set by name
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	name = strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".yaml"), ".yml")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, ErrRulesNotFound
	}

	m.mu.RLock()
	// Check cache first
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	data, err := m.readRulesFile(name)
	if err != nil {
		return nil, err
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, err
	}

	m.rules[name] = rules
	return rules, nil
}

func (m *Manager) readRulesFile(name string) ([]byte, error) {
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(m.rulesDir, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
	}
	return nil, ErrRulesNotFound
}

// ParseRules decodes a YAML rules document, fills defaults and validates it.
func ParseRules(data []byte) (*engine.Rules, error) {
	var rules engine.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: failed to parse rules: %v", ErrInvalidRules, err)
	}

	rules.ApplyDefaults()
	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &rules, nil
}

// ListRules returns information about all available rules sets
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	entries, err := os.ReadDir(m.rulesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var result []*service.RulesInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		id := strings.ToLower(strings.TrimSuffix(entry.Name(), ext))
		rules, err := m.LoadRules(id)
		if err != nil {
			// Skip invalid rules
			continue
		}

		seen[id] = true
		result = append(result, rulesInfo(entry.Name(), id, rules))
	}

	// The built-in classic rules are listed even without a file.
	if !seen[DefaultRulesName] {
		if rules, err := m.LoadRules(DefaultRulesName); err == nil {
			result = append(result, rulesInfo("", DefaultRulesName, rules))
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].RulesID < result[j].RulesID })
	return result, nil
}

func rulesInfo(filename, id string, rules *engine.Rules) *service.RulesInfo {
	return &service.RulesInfo{
		Filename:    filename,
		RulesID:     id,
		Name:        rules.Name,
		Description: rules.Description,
		MinPlayers:  rules.MinPlayers,
		MaxPlayers:  rules.MaxPlayers,
	}
}

// GetDefault returns the default rules
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// SetDefault sets the default rules by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// loadDefaultRules loads classic.yaml, falling back to the built-in rules
func (m *Manager) loadDefaultRules() error {
	rules, err := m.LoadRules(DefaultRulesName)
	if errors.Is(err, ErrRulesNotFound) {
		def := engine.DefaultRules()
		rules = &def
		m.rules[DefaultRulesName] = rules
	} else if err != nil {
		return err
	}

	m.defaultRules = rules
	return nil
}
