package module

import (
	"time"

	"stealthbridge/internal/platform/config"
)

// Options holds configuration settings for the journal module
type Options struct {
	Buffer     int
	BatchSize  int
	FlushEvery time.Duration
	Migrate    bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	jf := cfg.Prefix("CORE_JOURNAL_")
	return Options{
		Buffer:     jf.MayInt("BUFFER", 4096),
		BatchSize:  jf.MayInt("BATCH", 500),
		FlushEvery: jf.MayDuration("FLUSH_EVERY", 2*time.Second),
		Migrate:    jf.MayBool("MIGRATE", true),
	}
}
