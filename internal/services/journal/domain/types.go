// Package domain holds the call journal types and ports
package domain

import (
	"context"
	"time"
)

// Call is one row of the bridge_calls table
type Call struct {
	At         time.Time
	RequestID  string
	Frontend   string
	Caller     string
	Method     string
	Status     string
	Kind       string
	Message    string
	DurationMS int64
}

// MethodStats aggregates calls per method over a window
type MethodStats struct {
	Method   string  `json:"method"`
	Calls    uint64  `json:"calls"`
	Failures uint64  `json:"failures"`
	AvgMS    float64 `json:"avg_ms"`
}

// WriterPort persists finished calls
type WriterPort interface {
	Append(ctx context.Context, xs []Call) error
}

// QueryPort reads the journal back
type QueryPort interface {
	Stats(ctx context.Context, since time.Time) ([]MethodStats, error)
}
