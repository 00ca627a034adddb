// Package config holds the simulator run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openyield/vaultsim/factory"
)

// Config represents a complete simulation configuration.
type Config struct {
	Asset    AssetConfig    `json:"asset" yaml:"asset"`
	Vault    VaultConfig    `json:"vault" yaml:"vault"`
	Fees     FeesConfig     `json:"fees" yaml:"fees"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
	Scenario ScenarioConfig `json:"scenario" yaml:"scenario"`
}

// AssetConfig describes the underlying token.
type AssetConfig struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// VaultConfig describes the vault deployed for the run.
type VaultConfig struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// FeesConfig is the protocol fee applied at the factory.
type FeesConfig struct {
	Bps uint16 `json:"bps" yaml:"bps"`
}

// LedgerConfig selects where transfers and events are recorded.
type LedgerConfig struct {
	Type   string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ScenarioConfig parameterizes the scripted scenarios.
type ScenarioConfig struct {
	DepositUnits uint64 `json:"deposit_units" yaml:"deposit_units"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Asset.Symbol == "" {
		return fmt.Errorf("asset.symbol is required")
	}
	if c.Asset.Decimals == 0 || c.Asset.Decimals > 18 {
		return fmt.Errorf("asset.decimals must be between 1 and 18")
	}
	if c.Vault.Symbol == "" {
		return fmt.Errorf("vault.symbol is required")
	}
	if c.Fees.Bps > factory.MaxFeeBps {
		return fmt.Errorf("fees.bps must not exceed %d", factory.MaxFeeBps)
	}
	if c.Ledger.Type != "memory" && c.Ledger.Type != "sqlite" {
		return fmt.Errorf("ledger.type must be 'memory' or 'sqlite'")
	}
	if c.Ledger.Type == "sqlite" && c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger db_path required for sqlite type")
	}
	if c.Scenario.DepositUnits == 0 {
		return fmt.Errorf("scenario.deposit_units must be positive")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Asset: AssetConfig{
			Name:     "Test Asset",
			Symbol:   "ASSET",
			Decimals: 18,
		},
		Vault: VaultConfig{
			Name:   "Test Vault",
			Symbol: "vASSET",
		},
		Fees: FeesConfig{
			Bps: 0,
		},
		Ledger: LedgerConfig{
			Type: "memory",
		},
		Scenario: ScenarioConfig{
			DepositUnits: 1,
		},
	}
}
