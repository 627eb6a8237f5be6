package repokit

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"storecast/internal/platform/store"
)

// recordingQ is a Queryer that records every statement it sees
type recordingQ struct {
	sqls []string
}

func (f *recordingQ) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	var zero store.CommandTag
	return zero, nil
}

func (f *recordingQ) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	f.sqls = append(f.sqls, sql)
	var zero store.Rows
	return zero, nil
}

func (f *recordingQ) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	f.sqls = append(f.sqls, sql)
	var zero store.Row
	return zero
}

// recordingTx runs fn against its q and records direct (non-tx) statements
type recordingTx struct {
	q       *recordingQ
	txCalls int

	lastSQL  string
	lastArgs []any
}

func (f *recordingTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	f.txCalls++
	return fn(f.q)
}

func (f *recordingTx) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = append([]any(nil), args...)
	var zero store.CommandTag
	return zero, nil
}

func (f *recordingTx) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = append([]any(nil), args...)
	var zero store.Rows
	return zero, nil
}

func (f *recordingTx) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	f.lastSQL = sql
	f.lastArgs = append([]any(nil), args...)
	var zero store.Row
	return zero
}

func TestWithBeginHooks_HooksRunBeforeFnInsideTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := &recordingQ{}
	inner := &recordingTx{q: q}

	// the hook the seed loader installs: session tuning first, data after
	relax := func(ctx context.Context, gotQ Queryer) error {
		if gotQ != q {
			t.Fatalf("hook received different Queryer instance")
		}
		_, err := gotQ.Exec(ctx, "set local synchronous_commit to 'off'")
		return err
	}

	runner := WithBeginHooks(inner, relax)
	err := runner.Tx(ctx, func(gotQ Queryer) error {
		if gotQ != q {
			t.Fatalf("fn received different Queryer instance")
		}
		_, e := gotQ.Exec(ctx, "insert into schedule (store_id, date) values ($1, $2)")
		return e
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"set local synchronous_commit to 'off'",
		"insert into schedule (store_id, date) values ($1, $2)",
	}
	if !reflect.DeepEqual(q.sqls, want) {
		t.Fatalf("statement order mismatch want=%v got=%v", want, q.sqls)
	}
	if inner.txCalls != 1 {
		t.Fatalf("inner Tx should be called once, got %d", inner.txCalls)
	}
}

func TestWithBeginHooks_RunInOrder(t *testing.T) {
	t.Parallel()

	q := &recordingQ{}
	inner := &recordingTx{q: q}

	var seq []string
	h1 := func(context.Context, Queryer) error { seq = append(seq, "h1"); return nil }
	h2 := func(context.Context, Queryer) error { seq = append(seq, "h2"); return nil }

	err := WithBeginHooks(inner, h1, h2).Tx(context.Background(), func(Queryer) error {
		seq = append(seq, "fn")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(seq, []string{"h1", "h2", "fn"}) {
		t.Fatalf("sequence mismatch got=%v", seq)
	}
}

func TestWithBeginHooks_HookErrorAbortsBeforeFn(t *testing.T) {
	t.Parallel()

	q := &recordingQ{}
	inner := &recordingTx{q: q}

	testErr := errors.New("session tuning rejected")
	var fnRan bool

	h1 := func(context.Context, Queryer) error { return testErr }
	h2 := func(context.Context, Queryer) error {
		t.Fatalf("second hook should not run when first fails")
		return nil
	}

	r := WithBeginHooks(inner, h1, h2)
	err := r.Tx(context.Background(), func(Queryer) error { fnRan = true; return nil })

	if !errors.Is(err, testErr) {
		t.Fatalf("expected hook error to propagate, got=%v", err)
	}
	if fnRan {
		t.Fatalf("fn should not have run when a hook fails")
	}
}

func TestWithBeginHooks_DelegatesDirectCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &recordingTx{q: &recordingQ{}}
	r := WithBeginHooks(inner) // hooks only fire inside Tx

	if _, err := r.Exec(ctx, "update stores set promo2=$1 where id=$2", true, 22); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if inner.lastSQL != "update stores set promo2=$1 where id=$2" ||
		!reflect.DeepEqual(inner.lastArgs, []any{true, 22}) {
		t.Fatalf("Exec did not delegate: sql=%q args=%v", inner.lastSQL, inner.lastArgs)
	}

	if _, err := r.Query(ctx, "select id from stores where promo2"); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if inner.lastSQL != "select id from stores where promo2" {
		t.Fatalf("Query did not delegate: sql=%q", inner.lastSQL)
	}

	_ = r.QueryRow(ctx, "select count(*) from schedule")
	if inner.lastSQL != "select count(*) from schedule" {
		t.Fatalf("QueryRow did not delegate: sql=%q", inner.lastSQL)
	}
}
