package config

import (
	"fmt"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/clock"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
)

// Clock source names
const (
	ClockSystem = "system"
	ClockManual = "manual"
)

// ClockConfig represents the [clock] section
type ClockConfig struct {
	Source string `toml:"source" mapstructure:"source"`

	// Granularity truncates system clock readings
	Granularity time.Duration `toml:"granularity" mapstructure:"granularity"`

	// Start is the first reading of a manual clock
	Start int64 `toml:"start" mapstructure:"start"`

	// Strict rejects system clock regressions instead of clamping them
	Strict bool `toml:"strict" mapstructure:"strict"`
}

// GenesisConfig represents the [genesis] section
type GenesisConfig struct {
	MasterSeed string `toml:"master_seed" mapstructure:"master_seed"`
	Supply     uint64 `toml:"supply" mapstructure:"supply"`
}

// Validate performs validation on the clock configuration
func (c *ClockConfig) Validate() error {
	switch c.Source {
	case ClockSystem:
		if c.Granularity < 0 {
			return fmt.Errorf("granularity must be non-negative, got %s", c.Granularity)
		}
		if c.Granularity%time.Second != 0 {
			return fmt.Errorf("granularity must be whole seconds, got %s", c.Granularity)
		}
	case ClockManual:
	default:
		return fmt.Errorf("invalid clock source: %s (valid options: system, manual)", c.Source)
	}
	return nil
}

// NewSource builds the configured clock. The system clock is wrapped so
// readings never go backwards.
func (c *ClockConfig) NewSource() clock.Source {
	if c.Source == ClockManual {
		return clock.NewManual(c.Start)
	}
	m := clock.NewMonotonic(clock.System{Granularity: c.Granularity})
	m.Strict = c.Strict
	return m
}

// Validate performs validation on the genesis configuration
func (g *GenesisConfig) Validate() error {
	if g.MasterSeed == "" {
		return fmt.Errorf("master_seed is required")
	}
	if g.Supply == 0 {
		return fmt.Errorf("supply must be positive")
	}
	return nil
}

// GenesisOptions converts the section into genesis parameters.
func (g *GenesisConfig) GenesisOptions() genesis.Config {
	return genesis.Config{MasterSeed: g.MasterSeed, Supply: g.Supply}
}
