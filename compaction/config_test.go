package compaction

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.85, cfg.TriggerThreshold)
	assert.Equal(t, 200000, cfg.ContextWindow)
	assert.Equal(t, 2, cfg.PreserveTurns)
	assert.False(t, cfg.PruneToolOutputs)
	assert.Equal(t, 2000, cfg.PruneOverChars)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{ContextWindow: 100000}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultTriggerThreshold, cfg.TriggerThreshold)
	assert.Equal(t, 100000, cfg.ContextWindow)
	assert.Equal(t, DefaultPreserveTurns, cfg.PreserveTurns)
	assert.Equal(t, DefaultPruneOverChars, cfg.PruneOverChars)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "threshold of exactly one is valid",
			mutate:  func(c *Config) { c.TriggerThreshold = 1.0 },
			wantErr: false,
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.TriggerThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.TriggerThreshold = 1.1 },
			wantErr: true,
		},
		{
			name:    "negative context window",
			mutate:  func(c *Config) { c.ContextWindow = -1 },
			wantErr: true,
		},
		{
			name:    "zero preserve turns",
			mutate:  func(c *Config) { c.PreserveTurns = 0 },
			wantErr: true,
		},
		{
			name:    "zero prune chars",
			mutate:  func(c *Config) { c.PruneOverChars = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_TriggerTokens(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 170000, cfg.TriggerTokens())

	cfg.TriggerThreshold = 0.2
	assert.Equal(t, 40000, cfg.TriggerTokens())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compaction.yaml")
	data := []byte("trigger_threshold: 0.7\ncontext_window: 100000\nprune_tool_outputs: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.TriggerThreshold)
	assert.Equal(t, 100000, cfg.ContextWindow)
	assert.True(t, cfg.PruneToolOutputs)
	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultPreserveTurns, cfg.PreserveTurns)
	assert.Equal(t, DefaultPruneOverChars, cfg.PruneOverChars)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trigger_threshold: [oops"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trigger_threshold: 2.0\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
