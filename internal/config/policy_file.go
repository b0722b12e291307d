package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyFile is the YAML shape of an on-disk reaction policy.
// All fields are optional; zero values leave the env-derived value in place.
type PolicyFile struct {
	Emojis           []string `yaml:"emojis"`
	Probability      *int     `yaml:"probability"`
	MinDelayMs       *int     `yaml:"min_delay_ms"`
	MaxDelayMs       *int     `yaml:"max_delay_ms"`
	ReadingMsPerChar *int     `yaml:"reading_ms_per_char"`
	MaxReadingMs     *int     `yaml:"max_reading_ms"`
}

// LoadPolicyFile reads and parses a YAML reaction policy file.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &pf, nil
}

// Apply overrides the reaction policy fields of cfg with the file values.
func (p *PolicyFile) Apply(cfg *Config) {
	if len(p.Emojis) > 0 {
		cfg.Emojis = p.Emojis
	}
	if p.Probability != nil {
		cfg.ReactionProbability = *p.Probability
	}
	if p.MinDelayMs != nil {
		cfg.MinDelayMs = *p.MinDelayMs
	}
	if p.MaxDelayMs != nil {
		cfg.MaxDelayMs = *p.MaxDelayMs
	}
	if p.ReadingMsPerChar != nil {
		cfg.ReadingMsPerChar = *p.ReadingMsPerChar
	}
	if p.MaxReadingMs != nil {
		cfg.MaxReadingMs = *p.MaxReadingMs
	}
}
