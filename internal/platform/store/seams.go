package store

import "context"

// RowQuerier is the sql surface repositories are written against; a pool
// and an open transaction both satisfy it
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open a transaction scoped to fn
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Row is a single result row
type Row interface{ Scan(dest ...any) error }

// Rows is a forward only result set; callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() []string
	Err() error
	Close()
}

// CommandTag reports what a write did
type CommandTag interface {
	RowsAffected() int64
	String() string
}

// Clickhouse is the columnar seam the journal writes through. Insert takes
// rows as [][]any in table column order.
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by backends that can report readiness
type Pinger interface{ Ping(context.Context) error }
