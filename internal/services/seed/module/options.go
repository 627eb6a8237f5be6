package module

import (
	"time"

	"storecast/internal/platform/config"
)

// Options holds configuration options for the seed loader
type Options struct {
	Workers    int
	ChunkSize  int
	MaxRetries int
	RetryBase  time.Duration

	// SyncCommit keeps synchronous_commit on for seed transactions.
	// Off by default: a crashed seed run is rerun, not recovered
	SyncCommit bool
}

// FromConfig reads the seed options from config with CORE_SEED_ prefix
func FromConfig(cfg config.Conf) Options {
	sd := cfg.Prefix("CORE_SEED_")
	return Options{
		Workers:    sd.MayInt("WORKERS", 4),
		ChunkSize:  sd.MayInt("CHUNK", 500),
		MaxRetries: sd.MayInt("RETRIES", 3),
		RetryBase:  sd.MayDuration("RETRY_BASE", 250*time.Millisecond),
		SyncCommit: sd.MayBool("SYNC_COMMIT", false),
	}
}
