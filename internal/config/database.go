package config

import (
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/storage"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
)

// DatabaseConfig represents the [database] section
// Configures the store ledger state lives in
type DatabaseConfig struct {
	Type        string `toml:"type" mapstructure:"type"`
	Path        string `toml:"path" mapstructure:"path"`
	RedisAddr   string `toml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB     int    `toml:"redis_db" mapstructure:"redis_db"`
	RedisPrefix string `toml:"redis_prefix" mapstructure:"redis_prefix"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
}

// JournalConfig represents the [journal] section
// Configures the relational transaction journal
type JournalConfig struct {
	Driver   string `toml:"driver" mapstructure:"driver"`
	DSN      string `toml:"dsn" mapstructure:"dsn"`
	Compress bool   `toml:"compress" mapstructure:"compress"`
}

// Validate performs validation on the database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Type {
	case storage.BackendMemory:
	case storage.BackendPebble, storage.BackendLevelDB:
		if d.Path == "" {
			return fmt.Errorf("database path is required for type %s", d.Type)
		}
	case storage.BackendRedis:
		if d.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for type %s", d.Type)
		}
		if d.RedisDB < 0 {
			return fmt.Errorf("redis_db must be non-negative, got %d", d.RedisDB)
		}
	default:
		return fmt.Errorf("invalid database type: %s (valid options: memory, pebble, leveldb, redis)", d.Type)
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", d.CacheSize)
	}
	return nil
}

// StorageOptions converts the section into store options.
func (d *DatabaseConfig) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     d.Type,
		Path:        d.Path,
		RedisAddr:   d.RedisAddr,
		RedisDB:     d.RedisDB,
		RedisPrefix: d.RedisPrefix,
		CacheSize:   d.CacheSize,
	}
}

// Validate performs validation on the journal configuration
func (j *JournalConfig) Validate() error {
	switch j.Driver {
	case journal.DriverNone:
		return nil
	case journal.DriverSQLite, journal.DriverPostgres:
		if j.DSN == "" {
			return fmt.Errorf("journal dsn is required for driver %s", j.Driver)
		}
		return nil
	default:
		return fmt.Errorf("invalid journal driver: %s (valid options: none, sqlite, postgres)", j.Driver)
	}
}

// JournalOptions converts the section into journal settings.
func (j *JournalConfig) JournalOptions() journal.Config {
	return journal.Config{Driver: j.Driver, DSN: j.DSN, Compress: j.Compress}
}
