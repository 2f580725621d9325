// Package repo provides the ClickHouse journal repository
package repo

import (
	"context"
	"time"

	"stealthbridge/internal/platform/store"
	dom "stealthbridge/internal/services/journal/domain"
)

// Table receives one row per finished bridge call
const Table = "bridge_calls"

// Schema creates Table when missing
const Schema = `CREATE TABLE IF NOT EXISTS bridge_calls (
	at          DateTime64(3, 'UTC'),
	request_id  String,
	frontend    LowCardinality(String),
	caller      LowCardinality(String),
	method      LowCardinality(String),
	status      LowCardinality(String),
	kind        LowCardinality(String),
	message     String,
	duration_ms Int64
) ENGINE = MergeTree
PARTITION BY toYYYYMM(at)
ORDER BY (method, at)
TTL toDateTime(at) + INTERVAL 90 DAY`

// CH is the journal repository over the ClickHouse seam
type CH struct {
	db store.Clickhouse
}

// NewCH returns a repo; db must be non nil
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// Migrate creates the journal table
func (r *CH) Migrate(ctx context.Context) error { return r.db.Exec(ctx, Schema) }

// Append writes xs in one batch
func (r *CH) Append(ctx context.Context, xs []dom.Call) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, c := range xs {
		rows = append(rows, []any{
			c.At.UTC(), c.RequestID, c.Frontend, c.Caller, c.Method,
			c.Status, c.Kind, c.Message, c.DurationMS,
		})
	}
	return r.db.Insert(ctx, Table, rows)
}

// Stats aggregates calls per method since the given time
func (r *CH) Stats(ctx context.Context, since time.Time) ([]dom.MethodStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT method,
		       count() AS calls,
		       countIf(status = 'failure') AS failures,
		       avg(duration_ms) AS avg_ms
		FROM bridge_calls
		WHERE at >= ?
		GROUP BY method
		ORDER BY method`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dom.MethodStats
	for rows.Next() {
		var s dom.MethodStats
		if err := rows.Scan(&s.Method, &s.Calls, &s.Failures, &s.AvgMS); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
