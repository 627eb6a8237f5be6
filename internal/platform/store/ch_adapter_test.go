package store

import (
	"context"
	"errors"
	"testing"

	"storecast/internal/platform/store/ch"
)

type fakeChRows struct {
	cols   []string
	data   [][]any
	pos    int
	closed bool
	err    error
}

func (f *fakeChRows) Next() bool {
	if f.pos >= len(f.data) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeChRows) Scan(dest ...any) error {
	row := f.data[f.pos-1]
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			*d = row[i].(int64)
		case *float64:
			*d = row[i].(float64)
		case *string:
			*d = row[i].(string)
		}
	}
	return nil
}

func (f *fakeChRows) Err() error        { return f.err }
func (f *fakeChRows) Close() error      { f.closed = true; return nil }
func (f *fakeChRows) Columns() []string { return f.cols }

type fakeChClient struct {
	inserted map[string][][]any
	rows     *fakeChRows
	queryErr error
	pinged   bool
	closed   bool
}

func (f *fakeChClient) Insert(_ context.Context, table string, rows [][]any) error {
	if f.inserted == nil {
		f.inserted = map[string][][]any{}
	}
	f.inserted[table] = append(f.inserted[table], rows...)
	return nil
}

func (f *fakeChClient) Query(_ context.Context, _ string, _ ...any) (ch.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeChClient) Ping(_ context.Context) error { f.pinged = true; return nil }
func (f *fakeChClient) Close() error                 { f.closed = true; return nil }

// TestCHAdapter_InsertShape rejects anything but [][]any and delegates rows through
func TestCHAdapter_InsertShape(t *testing.T) {
	t.Parallel()

	fc := &fakeChClient{}
	a := &clickhouseAdapter{inner: fc}

	if err := a.Insert(context.Background(), "predictions", struct{}{}); err == nil {
		t.Fatalf("Insert expected shape error, got nil")
	}

	rows := [][]any{{int64(1), 42.0}}
	if err := a.Insert(context.Background(), "predictions", rows); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if got := fc.inserted["predictions"]; len(got) != 1 || got[0][0] != int64(1) {
		t.Fatalf("Insert did not delegate rows: %#v", fc.inserted)
	}
}

// TestCHAdapter_QueryWrapsRows iterates through the wrapped rows and closes them
func TestCHAdapter_QueryWrapsRows(t *testing.T) {
	t.Parallel()

	fr := &fakeChRows{
		cols: []string{"store", "sales"},
		data: [][]any{{int64(7), 5263.0}},
	}
	a := &clickhouseAdapter{inner: &fakeChClient{rows: fr}}

	rows, err := a.Query(context.Background(), "SELECT store, sales FROM predictions")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if cols := rows.Columns(); len(cols) != 2 || cols[0] != "store" {
		t.Fatalf("Columns mismatch: %#v", cols)
	}

	if !rows.Next() {
		t.Fatalf("Next should report the first row")
	}
	var storeID int64
	var sales float64
	if err := rows.Scan(&storeID, &sales); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if storeID != 7 || sales != 5263.0 {
		t.Fatalf("Scan mismatch: store=%d sales=%v", storeID, sales)
	}
	if rows.Next() {
		t.Fatalf("Next should be exhausted after one row")
	}
	if rows.Err() != nil {
		t.Fatalf("rows.Err not nil: %v", rows.Err())
	}

	rows.Close()
	if !fr.closed {
		t.Fatalf("Close did not delegate to underlying rows")
	}
}

// TestCHAdapter_QueryPropagatesError surfaces underlying errors with nil rows
func TestCHAdapter_QueryPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := &clickhouseAdapter{inner: &fakeChClient{queryErr: boom}}

	rows, err := a.Query(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if rows != nil {
		t.Fatalf("expected nil rows on error, got %#v", rows)
	}
}

// TestCHAdapter_PingAndCloseDelegate confirm both pass through to the client
func TestCHAdapter_PingAndCloseDelegate(t *testing.T) {
	t.Parallel()

	fc := &fakeChClient{}
	a := &clickhouseAdapter{inner: fc}

	if err := a.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if !fc.pinged {
		t.Fatalf("Ping did not delegate")
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !fc.closed {
		t.Fatalf("Close did not delegate")
	}
}
