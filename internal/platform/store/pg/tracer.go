package pg

import (
	"context"
	"strings"

	"stealthbridge/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer observes finished statements
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement to log under component=pg. Statements log at
// info, slow ones at warn and failed ones at error, whatever the root level.
func Tracer(log logger.Logger) QueryTracer {
	return logTracer{log: log.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (lt logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	lvl := zerolog.InfoLevel
	switch {
	case ev.Err != nil:
		lvl = zerolog.ErrorLevel
	case ev.Slow:
		lvl = zerolog.WarnLevel
	}
	lt.log.WithLevel(lvl).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds all whitespace runs into single spaces
func compact(sql string) string { return strings.Join(strings.Fields(sql), " ") }
