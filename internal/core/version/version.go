// Package version provides information about the build version of the service.
package version

import (
	"fmt"
	"runtime"
)

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'stealthbridge/internal/core/version.version=v0.0.1'
	// -X 'stealthbridge/internal/core/version.commit=abcd' -X 'stealthbridge/internal/core/version.date=2026-10-19'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Platform is the string getPlatformVersion answers with, eg "stealthbridge-api v0.3.1 go1.25.0 linux/amd64"
func Platform(name string) string {
	if name == "" {
		name = service
	}
	return fmt.Sprintf("%s %s %s %s/%s", name, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var (
	service = "stealthbridge-api"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
