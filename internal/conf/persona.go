package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

// PersonaConfig is the persona definition loaded from YAML
type PersonaConfig struct {
	Name              string   `yaml:"name"`
	Instructions      string   `yaml:"instructions"`
	ProtectedKeywords []string `yaml:"protected_keywords"`
	Greetings         []string `yaml:"greetings"`
	DeflectionPhrase  string   `yaml:"deflection_phrase"`
	SafeModeNote      string   `yaml:"safe_mode_note"`
	FallbackReply     string   `yaml:"fallback_reply"`
}

// DefaultPersonaConfig returns the built-in persona
func DefaultPersonaConfig() *PersonaConfig {
	return &PersonaConfig{
		Name: "Maverick",
		Instructions: "You are Maverick — short, nonchalant, dark-humored. 1-3 short lines. Satirical insults allowed for " +
			"non-protected targets. Never claim to be an AI; deny cleverly. Don't attack protected groups.",
		ProtectedKeywords: []string{
			"race", "black", "white", "asian", "hispanic", "jew", "muslim", "christian", "gay", "lesbian", "trans",
			"disabled", "handicap", "indian", "pakistan", "sikh", "hindu",
		},
		Greetings:        []string{"yo", "hey", "hi", "hello"},
		DeflectionPhrase: "(not touching that).",
		SafeModeNote:     "NOTE: The last message mentions a protected identity. Do NOT insult any protected group. Reply neutrally or pivot.",
		FallbackReply:    "huh. can't chat right now.",
	}
}

// LoadPersonaConfig loads the persona from YAML. With an empty path the usual
// locations are tried and the built-in persona is used when none exists.
// The returned path is empty when defaults were used.
func LoadPersonaConfig(configPath string) (*PersonaConfig, string, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/persona.yaml",
			"/etc/feishu-persona-bot/persona.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "persona.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
		if configPath != "" {
			return nil, "", fmt.Errorf("read persona config: %w", err)
		}
	}

	if data == nil {
		return DefaultPersonaConfig(), "", nil
	}

	var config PersonaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, loadedPath, nil
}

// fillDefaults fills in default values for empty fields
func (c *PersonaConfig) fillDefaults() {
	defaults := DefaultPersonaConfig()

	if c.Name == "" {
		c.Name = defaults.Name
	}
	if c.Instructions == "" {
		c.Instructions = defaults.Instructions
	}
	if len(c.ProtectedKeywords) == 0 {
		c.ProtectedKeywords = defaults.ProtectedKeywords
	}
	if len(c.Greetings) == 0 {
		c.Greetings = defaults.Greetings
	}
	if c.DeflectionPhrase == "" {
		c.DeflectionPhrase = defaults.DeflectionPhrase
	}
	if c.SafeModeNote == "" {
		c.SafeModeNote = defaults.SafeModeNote
	}
	if c.FallbackReply == "" {
		c.FallbackReply = defaults.FallbackReply
	}
}

// ToPersona converts to the domain persona
func (c *PersonaConfig) ToPersona() domain.Persona {
	return domain.Persona{
		Name:              c.Name,
		Instructions:      c.Instructions,
		ProtectedKeywords: append([]string(nil), c.ProtectedKeywords...),
		Greetings:         append([]string(nil), c.Greetings...),
		DeflectionPhrase:  c.DeflectionPhrase,
		SafeModeNote:      c.SafeModeNote,
		FallbackReply:     c.FallbackReply,
	}
}
