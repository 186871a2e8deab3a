package config

import (
	"github.com/spf13/viper"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
	"github.com/LeJamon/goDutchAuction/internal/storage"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore/cache"
)

// Default listen port of the JSON-RPC server
const DefaultPort = 5005

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.admin", false)
	v.SetDefault("server.send_queue_limit", 256)

	// Database defaults
	v.SetDefault("database.type", storage.BackendMemory)
	v.SetDefault("database.path", "")
	v.SetDefault("database.redis_addr", "127.0.0.1:6379")
	v.SetDefault("database.redis_db", 0)
	v.SetDefault("database.redis_prefix", "")
	v.SetDefault("database.cache_size", cache.DefaultSize)

	// Journal defaults
	v.SetDefault("journal.driver", journal.DriverNone)
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.compress", true)

	// Clock defaults
	v.SetDefault("clock.source", ClockSystem)
	v.SetDefault("clock.granularity", "1s")
	v.SetDefault("clock.start", 0)
	v.SetDefault("clock.strict", false)

	// Genesis defaults
	v.SetDefault("genesis.master_seed", genesis.DefaultMasterSeed)
	v.SetDefault("genesis.supply", genesis.DefaultSupply)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
