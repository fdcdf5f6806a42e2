package compaction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	// DefaultTriggerThreshold triggers compaction at 85% context usage.
	DefaultTriggerThreshold = 0.85

	// DefaultContextWindow is the context window assumed when the caller
	// does not supply one (200K, current Claude models).
	DefaultContextWindow = 200000

	// DefaultPreserveTurns is the number of most recent user-initiated
	// turns kept verbatim through compaction.
	DefaultPreserveTurns = 2

	// DefaultPruneOverChars is the tool-result size above which outputs
	// are replaced with a placeholder in the summarizer input.
	DefaultPruneOverChars = 2000
)

// Config holds compaction policy. All fields are plain data; a Config can
// be built in code or loaded from YAML. The zero value is not usable
// directly; call ApplyDefaults or start from DefaultConfig.
type Config struct {
	// TriggerThreshold is the context usage fraction (0.0-1.0] at which
	// compaction becomes necessary. Default: 0.85.
	TriggerThreshold float64 `yaml:"trigger_threshold"`

	// ContextWindow is the model's context window in tokens.
	// Default: 200000.
	ContextWindow int `yaml:"context_window"`

	// PreserveTurns is how many of the most recent user-initiated turns
	// are kept verbatim. Default: 2.
	PreserveTurns int `yaml:"preserve_turns"`

	// PruneToolOutputs replaces oversized tool-result payloads with a
	// placeholder before the head is sent to the summarizer. This only
	// shapes the summarizer input; the preserved tail is never touched.
	// Default: false.
	PruneToolOutputs bool `yaml:"prune_tool_outputs"`

	// PruneOverChars is the tool-result length that triggers pruning when
	// PruneToolOutputs is set. Default: 2000.
	PruneOverChars int `yaml:"prune_over_chars"`
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		TriggerThreshold: DefaultTriggerThreshold,
		ContextWindow:    DefaultContextWindow,
		PreserveTurns:    DefaultPreserveTurns,
		PruneToolOutputs: false,
		PruneOverChars:   DefaultPruneOverChars,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.TriggerThreshold == 0 {
		c.TriggerThreshold = DefaultTriggerThreshold
	}
	if c.ContextWindow == 0 {
		c.ContextWindow = DefaultContextWindow
	}
	if c.PreserveTurns == 0 {
		c.PreserveTurns = DefaultPreserveTurns
	}
	if c.PruneOverChars == 0 {
		c.PruneOverChars = DefaultPruneOverChars
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.TriggerThreshold <= 0 || c.TriggerThreshold > 1.0 {
		return fmt.Errorf("%w: trigger_threshold must be in (0, 1], got %f", ErrInvalidConfig, c.TriggerThreshold)
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("%w: context_window must be positive, got %d", ErrInvalidConfig, c.ContextWindow)
	}
	if c.PreserveTurns < 1 {
		return fmt.Errorf("%w: preserve_turns must be at least 1, got %d", ErrInvalidConfig, c.PreserveTurns)
	}
	if c.PruneOverChars <= 0 {
		return fmt.Errorf("%w: prune_over_chars must be positive, got %d", ErrInvalidConfig, c.PruneOverChars)
	}
	return nil
}

// TriggerTokens returns the absolute token count at which compaction
// becomes necessary.
func (c *Config) TriggerTokens() int {
	return int(float64(c.ContextWindow) * c.TriggerThreshold)
}

// LoadConfig reads a YAML config file, applies defaults, and validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
