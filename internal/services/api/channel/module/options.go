package module

import "stealthbridge/internal/platform/config"

// Options controls the channel API
type Options struct {
	// APIKeys is "name:key,name:key"; empty leaves the channel open
	APIKeys string
}

// FromConfig reads CORE_CHANNEL_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_CHANNEL_")
	return Options{APIKeys: c.MayString("API_KEYS", "")}
}
