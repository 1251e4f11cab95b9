// Package shellcfg loads the shell's optional YAML configuration file,
// ~/.goshellrc.yaml, mirroring the teacher's ConfigFile/loadConfig in
// llm.go: tolerant of a missing file, strict about a malformed one.
package shellcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the shell's user-facing configuration surface, per
// SPEC_FULL.md's AMBIENT STACK section.
type Config struct {
	// Prompt overrides the default "$ " prompt string when non-empty.
	Prompt string `yaml:"prompt,omitempty"`
	// HistFile overrides the default history file path used when
	// $HISTFILE is unset.
	HistFile string `yaml:"history_file,omitempty"`
	// HistSize caps how many entries are kept and persisted at shutdown,
	// trimmed from the front (history.Store.TrimTo). Zero means unlimited.
	HistSize int `yaml:"history_size,omitempty"`
	// DisabledBuiltins names builtins the trie and dispatcher should
	// treat as if they did not exist.
	DisabledBuiltins []string `yaml:"disabled_builtins,omitempty"`
}

// defaultPath returns ~/.goshellrc.yaml, or "" if the home directory
// cannot be determined.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".goshellrc.yaml")
}

// Load reads the configuration file at path. An empty path resolves to
// defaultPath(). A missing file yields a zero Config and a nil error,
// matching loadConfig's "don't fail the program" behavior for a config
// file that was never created; a present-but-malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultPath()
	}
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return &Config{}, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Disables reports whether cfg disables the named builtin.
func (cfg *Config) Disables(name string) bool {
	if cfg == nil {
		return false
	}
	for _, d := range cfg.DisabledBuiltins {
		if d == name {
			return true
		}
	}
	return false
}
