// Package raw reads environment variables during bootstrap; the logger is
// configured from it, so it must not log
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed view over the environment, eg "LOG_"
type Conf struct{ prefix string }

// New returns a Conf with no prefix
func New() Conf { return Conf{} }

// Prefix returns a child Conf whose keys gain p
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the full variable name for key
func (c Conf) Key(key string) string { return c.prefix + key }

// Get returns the trimmed value or def when unset or blank
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.Key(key))); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true and yes as true in any case; unset or blank yields def
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.Get(key, "")) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt returns a non-negative decimal value; anything else yields def
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.Get(key, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}
