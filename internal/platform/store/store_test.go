package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type quietPG struct{}

func (quietPG) Tx(context.Context, func(RowQuerier) error) error           { return nil }
func (quietPG) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (quietPG) Query(context.Context, string, ...any) (Rows, error)      { return nil, nil }
func (quietPG) QueryRow(context.Context, string, ...any) Row             { return nil }

type pingPG struct {
	quietPG
	err    error
	closed bool
}

func (p *pingPG) Ping(context.Context) error { return p.err }
func (p *pingPG) Close() error               { p.closed = true; return nil }

type stubCH struct {
	pingErr  error
	closeErr error
}

func (stubCH) Insert(context.Context, string, any) error        { return nil }
func (stubCH) Exec(context.Context, string, ...any) error       { return nil }
func (stubCH) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (c stubCH) Ping(context.Context) error                     { return c.pingErr }
func (c stubCH) Close() error                                   { return c.closeErr }

func TestGuard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		store   *Store
		wantErr []string
	}{
		{"nil store", nil, []string{"nil store"}},
		{"nothing open", &Store{}, nil},
		{"pg cannot ping", &Store{PG: quietPG{}}, nil},
		{"pg healthy", &Store{PG: &pingPG{}}, nil},
		{"pg down", &Store{PG: &pingPG{err: errors.New("refused")}}, []string{"pg: refused"}},
		{
			"both down",
			&Store{PG: &pingPG{err: errors.New("refused")}, CH: stubCH{pingErr: errors.New("timeout")}},
			[]string{"pg: refused", "ch: timeout"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.store.Guard(context.Background())
			if (err != nil) != (len(tt.wantErr) > 0) {
				t.Fatalf("err = %v", err)
			}
			for _, w := range tt.wantErr {
				if !strings.Contains(err.Error(), w) {
					t.Fatalf("err %q missing %q", err, w)
				}
			}
		})
	}
}

func TestClose(t *testing.T) {
	t.Parallel()
	pg := &pingPG{}
	s := &Store{PG: pg, CH: stubCH{closeErr: errors.New("conn reset")}}
	err := s.Close(context.Background())
	if !pg.closed {
		t.Fatalf("pg not closed")
	}
	if err == nil || err.Error() != "ch: conn reset" {
		t.Fatalf("err = %v", err)
	}
	if err := (&Store{PG: quietPG{}}).Close(context.Background()); err != nil {
		t.Fatalf("backend without Close: %v", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := Open(ctx, Config{CH: CHConfig{Enabled: true, URL: "clickhouse://127.0.0.1:9000/journal"}})
	if err != nil || s.CH == nil || s.PG != nil {
		t.Fatalf("ch only: s=%+v err=%v", s, err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	// postgres opens first and its failure stops clickhouse from opening
	s, err = Open(ctx, Config{
		PG: PGConfig{Enabled: true, URL: "://bad"},
		CH: CHConfig{Enabled: true, URL: "clickhouse://127.0.0.1:9000/journal"},
	})
	if err == nil || s != nil {
		t.Fatalf("bad pg: s=%+v err=%v", s, err)
	}

	s, err = Open(ctx, Config{CH: CHConfig{Enabled: true, URL: "http://%zz"}})
	if err == nil || s != nil {
		t.Fatalf("bad ch: s=%+v err=%v", s, err)
	}
}

func TestOpen_Options(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("logger not applied: %q", buf.String())
	}

	boom := errors.New("boom")
	if _, err := Open(context.Background(), Config{}, func(*Store) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("option error = %v", err)
	}

	s, _ = Open(context.Background(), Config{})
	s.Log.Info().Msg("discarded")
}
