package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.60, cfg.Scoring.EnterThreshold)
	assert.Equal(t, 600, cfg.Simulation.SimLatencySeconds)
	assert.Equal(t, 2, cfg.Risk.TimeoutDays)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty_universe", func(c *Config) { c.Universe.Tickers = nil }},
		{"timeout_zero", func(c *Config) { c.Risk.TimeoutDays = 0 }},
		{"kelly_above_one", func(c *Config) { c.Risk.KellyScale = 1.5 }},
		{"negative_latency", func(c *Config) { c.Simulation.SimLatencySeconds = -1 }},
		{"stop_pct_one", func(c *Config) { c.Risk.StopPct = 1 }},
		{"beta_zero", func(c *Config) { c.Scoring.Beta = 0 }},
		{"enter_threshold_above_one", func(c *Config) { c.Scoring.EnterThreshold = 1.2 }},
		{"zero_capital", func(c *Config) { c.Simulation.InitialCapital = 0 }},
		{"rsi_overbought_low", func(c *Config) { c.Scoring.RSIOverbought = 30 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"trader.yaml", "trader.json"} {
		path := filepath.Join(dir, name)
		cfg := Default()
		cfg.Scoring.EnterThreshold = 0.55

		require.NoError(t, cfg.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	cfg := Default()
	cfg.Risk.TimeoutDays = 0

	require.NoError(t, cfg.SaveToFile(path))
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
