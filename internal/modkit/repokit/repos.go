// Package repokit holds the seams service repos are written against
package repokit

import (
	"context"

	"stealthbridge/internal/platform/store"
)

type (
	// Queryer is the read and write surface of one connection or tx
	Queryer = store.RowQuerier

	// TxRunner runs a function inside a transaction
	TxRunner = store.TxRunner

	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag is the result of a write
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction of tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// CH exposes the ClickHouse seam to journal style repos
func CH(_ context.Context, db store.Clickhouse) store.Clickhouse { return db }
