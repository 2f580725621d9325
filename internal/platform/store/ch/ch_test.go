package ch

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type fakeBatch struct {
	driver.Batch
	rows    [][]any
	sent    bool
	aborted bool
	failOn  int
}

func (b *fakeBatch) Append(v ...any) error {
	if b.failOn > 0 && len(b.rows)+1 == b.failOn {
		return errors.New("bad column")
	}
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error  { b.sent = true; return nil }
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }

type fakeConn struct {
	batch  *fakeBatch
	query  string
	exec   string
	closed bool
}

func (f *fakeConn) PrepareBatch(_ context.Context, q string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	f.query = q
	return f.batch, nil
}

func (f *fakeConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, errors.New("no server")
}

func (f *fakeConn) Exec(_ context.Context, q string, _ ...any) error {
	f.exec = q
	return nil
}

func (f *fakeConn) Ping(context.Context) error { return nil }
func (f *fakeConn) Close() error               { f.closed = true; return nil }

// TestOpen parses the DSN without dialing
func TestOpen(t *testing.T) {
	t.Parallel()

	cl, err := Open(context.Background(), Config{URL: "clickhouse://default:@127.0.0.1:9000/default", Role: "api"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if cl == nil {
		t.Fatalf("Open returned nil client")
	}
	_ = cl.Close()
}

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestInsert_BatchesRows(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{batch: &fakeBatch{}}
	cl := &CH{conn: fc}
	err := cl.Insert(context.Background(), "bridge_calls", [][]any{{"a", 1}, {"b", 2}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if fc.query != "INSERT INTO bridge_calls" || len(fc.batch.rows) != 2 || !fc.batch.sent {
		t.Fatalf("batch = %+v query = %q", fc.batch, fc.query)
	}
}

func TestInsert_AppendFailureAborts(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{batch: &fakeBatch{failOn: 2}}
	err := (&CH{conn: fc}).Insert(context.Background(), "t", [][]any{{1}, {2}})
	if err == nil || !fc.batch.aborted || fc.batch.sent {
		t.Fatalf("err=%v batch=%+v", err, fc.batch)
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{}
	if err := (&CH{conn: fc}).Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if fc.query != "" {
		t.Fatalf("prepared a batch for no rows")
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{}
	if err := (&CH{conn: fc}).Close(); err != nil || !fc.closed {
		t.Fatalf("Close = %v closed=%v", err, fc.closed)
	}
}

func TestExec_PassesStatement(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{}
	if err := (&CH{conn: fc}).Exec(context.Background(), "CREATE TABLE t (x UInt8) ENGINE = Memory"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if fc.exec != "CREATE TABLE t (x UInt8) ENGINE = Memory" {
		t.Fatalf("exec = %q", fc.exec)
	}
}
