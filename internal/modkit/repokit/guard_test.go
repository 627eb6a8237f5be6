package repokit

import (
	"context"
	"strings"
	"testing"

	"storecast/internal/platform/testkit"
)

// fakeGuard lets us force Guard() to succeed or fail
type fakeGuard struct{ err error }

func (f fakeGuard) Guard(context.Context) error { return f.err }

// assertPanicContains runs fn and asserts it panics with a message containing wantSub
func assertPanicContains(t *testing.T, name, wantSub string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected panic, got none", name)
			return
		}
		var msg string
		switch x := r.(type) {
		case string:
			msg = x
		case error:
			msg = x.Error()
		}
		if !strings.Contains(msg, wantSub) {
			t.Fatalf("%s: panic message mismatch, got %q want contains %q", name, msg, wantSub)
		}
	}()
	fn()
}

func TestMustGuard_PanicsOnError(t *testing.T) {
	t.Parallel()

	assertPanicContains(t, "MustGuard(error)", "dependency guard failed: pg: down", func() {
		MustGuard(context.Background(), fakeGuard{err: errBoom("pg: down")})
	})
}

func TestMustGuard_NoPanicOnNilError(t *testing.T) {
	t.Parallel()

	testkit.MustNotPanic(t, func() {
		MustGuard(context.Background(), fakeGuard{err: nil})
	})
}

// minimal error type to avoid importing errors
type errBoom string

func (e errBoom) Error() string { return string(e) }
