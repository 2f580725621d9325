// Package config reads service settings from prefixed environment variables.
// Invalid optional values log a warning and fall back to their default.
package config

import (
	"strconv"
	"strings"
	"time"

	"stealthbridge/internal/platform/config/raw"
	"stealthbridge/internal/platform/logger"
)

// Conf is a prefixed view over the environment, eg Prefix("CORE_API_")
type Conf struct{ env raw.Conf }

// New returns a Conf with no prefix
func New() Conf { return Conf{env: raw.New()} }

// Prefix returns a child Conf whose keys gain p
func (c Conf) Prefix(p string) Conf { return Conf{env: c.env.Prefix(p)} }

// Key returns the full variable name for key
func (c Conf) Key(key string) string { return c.env.Key(key) }

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.env.Get(key, "")
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Err(err).
			Str("key", c.Key(key)).
			Str("value", s).
			Interface("default", def).
			Msg("invalid config value; using default")
		return def
	}
	return v
}

// MayString returns the trimmed value or def
func (c Conf) MayString(key, def string) string { return c.env.Get(key, def) }

// MayInt returns a decimal int or def
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool accepts what strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration accepts Go durations such as 250ms or 5m
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blank items; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for item := range strings.SplitSeq(c.env.Get(key, ""), ",") {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it case-insensitively matches one of allowed,
// normalized to that spelling. Any other value panics: a typo here would
// silently switch a backend.
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
