// Package service contains stats workflows
package service

import (
	"context"
	"time"

	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/services/api/stats/domain"
	jdom "stealthbridge/internal/services/journal/domain"
)

// Service defines the stats service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stats service over the call journal
type Svc struct {
	journal jdom.QueryPort
	now     func() time.Time
}

// New constructs a stats service; a nil journal answers every query as unavailable
func New(q jdom.QueryPort) *Svc {
	return &Svc{journal: q, now: time.Now}
}

// WithClock swaps the time source
func (s *Svc) WithClock(now func() time.Time) *Svc {
	s.now = now
	return s
}

// Methods returns per method call counts since the given day
func (s *Svc) Methods(ctx context.Context, in domain.MethodsInput) ([]domain.MethodRow, error) {
	if s.journal == nil {
		return nil, perr.Unavailablef("call journal is not configured")
	}
	since, err := time.Parse(time.DateOnly, in.Since)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("since must be YYYY-MM-DD"), "since")
	}
	if since.After(s.now()) {
		return nil, perr.WithField(perr.InvalidArgf("since is in the future"), "since")
	}

	rows, err := s.journal.Stats(ctx, since)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MethodRow, 0, len(rows))
	for _, r := range rows {
		if in.Method != "" && r.Method != in.Method {
			continue
		}
		row := domain.MethodRow{Method: r.Method, Calls: r.Calls, Failures: r.Failures, AvgMS: r.AvgMS}
		if r.Calls > 0 {
			row.FailureRate = float64(r.Failures) / float64(r.Calls)
		}
		out = append(out, row)
	}
	return out, nil
}
