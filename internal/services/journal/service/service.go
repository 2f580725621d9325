// Package service provides the asynchronous call journal
package service

import (
	"context"
	"sync/atomic"
	"time"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/platform/logger"
	dom "stealthbridge/internal/services/journal/domain"
)

// Config sizes the in-memory buffer and the flush cadence
type Config struct {
	Buffer     int
	BatchSize  int
	FlushEvery time.Duration
}

// Service buffers finished calls and writes them in batches from Run
type Service struct {
	Storage dom.WriterPort
	Cfg     Config

	queue   chan dom.Call
	dropped atomic.Uint64
}

var _ bridge.Recorder = (*Service)(nil)

// New constructs the journal with a required writer
func New(storage dom.WriterPort, cfg Config) *Service {
	if storage == nil {
		panic("journal.Service requires a non nil writer")
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 4096
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	return &Service{Storage: storage, Cfg: cfg, queue: make(chan dom.Call, cfg.Buffer)}
}

// Record implements bridge.Recorder; it drops the entry when the buffer is full
func (s *Service) Record(_ context.Context, e bridge.Entry) {
	c := dom.Call{
		At:         e.At,
		RequestID:  e.RequestID,
		Frontend:   e.Frontend,
		Caller:     e.Caller,
		Method:     e.Method,
		Status:     e.Status.String(),
		Message:    e.Message,
		DurationMS: e.Duration.Milliseconds(),
	}
	if e.Status == bridge.StatusFailure {
		c.Kind = string(e.Kind)
	}
	select {
	case s.queue <- c:
	default:
		s.dropped.Add(1)
	}
}

// Dropped reports how many entries were lost to a full buffer
func (s *Service) Dropped() uint64 { return s.dropped.Load() }

// Run flushes batches until ctx ends, then flushes what is left
func (s *Service) Run(ctx context.Context) error {
	l := logger.C(ctx).With().Str("mod", "journal").Logger()
	tick := time.NewTicker(s.Cfg.FlushEvery)
	defer tick.Stop()

	batch := make([]dom.Call, 0, s.Cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := s.Storage.Append(ctx, batch); err != nil {
			l.Error().Err(err).Int("rows", len(batch)).Msg("journal: append failed")
		}
		batch = batch[:0]
	}

	for {
		select {
		case c := <-s.queue:
			batch = append(batch, c)
			if len(batch) >= s.Cfg.BatchSize {
				flush(ctx)
			}
		case <-tick.C:
			flush(ctx)
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		drain:
			for {
				select {
				case c := <-s.queue:
					batch = append(batch, c)
				default:
					break drain
				}
			}
			flush(fctx)
			cancel()
			if n := s.Dropped(); n > 0 {
				l.Warn().Uint64("dropped", n).Msg("journal: entries dropped on full buffer")
			}
			return nil
		}
	}
}
