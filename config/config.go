// Package config loads and validates the trader configuration. Structural
// problems (bad thresholds, empty universe) are rejected here, before a run
// starts; nothing downstream re-validates.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete backtest configuration.
type Config struct {
	Universe   UniverseConfig   `json:"universe" yaml:"universe"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// UniverseConfig lists the tickers eligible for trading.
type UniverseConfig struct {
	Tickers []string `json:"tickers" yaml:"tickers"`
}

// RiskConfig contains sizing caps and protective exit parameters.
type RiskConfig struct {
	KellyScale       float64 `json:"kelly_scale" yaml:"kelly_scale"`
	MaxTotalExposure float64 `json:"max_total_exposure" yaml:"max_total_exposure"`
	MaxPerName       float64 `json:"max_per_name" yaml:"max_per_name"`
	SectorCap        float64 `json:"sector_cap" yaml:"sector_cap"` // reserved, not enforced
	StopPct          float64 `json:"stop_pct" yaml:"stop_pct"`
	TPPct            float64 `json:"tp_pct" yaml:"tp_pct"`
	TimeoutDays      int     `json:"timeout_days" yaml:"timeout_days"`
}

// ScoringConfig contains model and smoothing parameters.
type ScoringConfig struct {
	ZThreshold      float64 `json:"z_threshold" yaml:"z_threshold"`
	AlphaExt        float64 `json:"alpha_ext" yaml:"alpha_ext"`
	RSIOverbought   float64 `json:"rsi_overbought" yaml:"rsi_overbought"`
	VolumeSpikeMult float64 `json:"volume_spike_mult" yaml:"volume_spike_mult"`
	EnterThreshold  float64 `json:"enter_threshold" yaml:"enter_threshold"`
	KneejerkCut     float64 `json:"kneejerk_cut" yaml:"kneejerk_cut"`
	Beta            float64 `json:"beta" yaml:"beta"`
	DecayLambda     float64 `json:"decay_lambda" yaml:"decay_lambda"`
}

// SimulationConfig contains execution-model parameters.
type SimulationConfig struct {
	SlippageBps       float64 `json:"slippage_bps" yaml:"slippage_bps"`
	FeeBps            float64 `json:"fee_bps" yaml:"fee_bps"`
	SimLatencySeconds int     `json:"sim_latency_seconds" yaml:"sim_latency_seconds"`
	InitialCapital    float64 `json:"initial_capital" yaml:"initial_capital"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if len(c.Universe.Tickers) == 0 {
		return fmt.Errorf("universe.tickers is required")
	}
	if c.Risk.KellyScale < 0 || c.Risk.KellyScale > 1 {
		return fmt.Errorf("risk.kelly_scale must be in [0, 1]")
	}
	if c.Risk.MaxTotalExposure < 0 || c.Risk.MaxTotalExposure > 1 {
		return fmt.Errorf("risk.max_total_exposure must be in [0, 1]")
	}
	if c.Risk.MaxPerName < 0 || c.Risk.MaxPerName > 1 {
		return fmt.Errorf("risk.max_per_name must be in [0, 1]")
	}
	if c.Risk.StopPct < 0 || c.Risk.StopPct >= 1 {
		return fmt.Errorf("risk.stop_pct must be in [0, 1)")
	}
	if c.Risk.TPPct < 0 {
		return fmt.Errorf("risk.tp_pct must be non-negative")
	}
	if c.Risk.TimeoutDays < 1 {
		return fmt.Errorf("risk.timeout_days must be at least 1")
	}
	if c.Scoring.EnterThreshold < 0 || c.Scoring.EnterThreshold > 1 {
		return fmt.Errorf("scoring.enter_threshold must be in [0, 1]")
	}
	if c.Scoring.KneejerkCut < 0 || c.Scoring.KneejerkCut > 1 {
		return fmt.Errorf("scoring.kneejerk_cut must be in [0, 1]")
	}
	if c.Scoring.Beta <= 0 || c.Scoring.Beta > 1 {
		return fmt.Errorf("scoring.beta must be in (0, 1]")
	}
	if c.Scoring.DecayLambda < 0 {
		return fmt.Errorf("scoring.decay_lambda must be non-negative")
	}
	if c.Scoring.RSIOverbought < 50 || c.Scoring.RSIOverbought > 100 {
		return fmt.Errorf("scoring.rsi_overbought must be in [50, 100]")
	}
	if c.Scoring.VolumeSpikeMult < 1 {
		return fmt.Errorf("scoring.volume_spike_mult must be at least 1")
	}
	if c.Simulation.SlippageBps < 0 {
		return fmt.Errorf("simulation.slippage_bps must be non-negative")
	}
	if c.Simulation.FeeBps < 0 {
		return fmt.Errorf("simulation.fee_bps must be non-negative")
	}
	if c.Simulation.SimLatencySeconds < 0 {
		return fmt.Errorf("simulation.sim_latency_seconds must be non-negative")
	}
	if c.Simulation.InitialCapital <= 0 {
		return fmt.Errorf("simulation.initial_capital must be positive")
	}
	return nil
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Universe: UniverseConfig{
			Tickers: []string{"AAPL", "MSFT", "NVDA", "META", "LCID"},
		},
		Risk: RiskConfig{
			KellyScale:       0.5,
			MaxTotalExposure: 0.30,
			MaxPerName:       0.05,
			SectorCap:        0.15,
			StopPct:          0.02,
			TPPct:            0.04,
			TimeoutDays:      2,
		},
		Scoring: ScoringConfig{
			ZThreshold:      1.5,
			AlphaExt:        0.4,
			RSIOverbought:   75,
			VolumeSpikeMult: 3.0,
			EnterThreshold:  0.60,
			KneejerkCut:     0.60,
			Beta:            0.3,
			DecayLambda:     0.1,
		},
		Simulation: SimulationConfig{
			SlippageBps:       10,
			FeeBps:            2,
			SimLatencySeconds: 600,
			InitialCapital:    1000,
		},
	}
}
