package config

import (
	"fmt"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.Database.Validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}
	if err := config.Clock.Validate(); err != nil {
		return fmt.Errorf("clock validation failed: %w", err)
	}
	if err := config.Genesis.Validate(); err != nil {
		return fmt.Errorf("genesis validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	if err := validateCrossReferences(config); err != nil {
		return fmt.Errorf("cross-validation failed: %w", err)
	}
	return nil
}

// validateCrossReferences checks settings that depend on each other
func validateCrossReferences(config *Config) error {
	// A manual clock can only be moved through the admin API.
	if config.Clock.Source == ClockManual && !config.Server.Admin {
		return fmt.Errorf("a manual clock requires server.admin")
	}
	return nil
}
