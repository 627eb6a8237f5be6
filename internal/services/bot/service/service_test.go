package service

import (
	"context"
	"errors"
	"testing"

	perr "storecast/internal/platform/errors"
	"storecast/internal/services/bot/domain"
)

type fakeSource struct {
	rows  []domain.RawRow
	err   error
	store int64
	calls int
}

func (f *fakeSource) RowsForStore(_ context.Context, store int64) ([]domain.RawRow, error) {
	f.store = store
	f.calls++
	return f.rows, f.err
}

type fakeScorer struct {
	totals []domain.StoreTotal
	err    error
	rows   int
	calls  int
}

func (f *fakeScorer) Predict(_ context.Context, rows []domain.RawRow) ([]domain.StoreTotal, error) {
	f.rows = len(rows)
	f.calls++
	return f.totals, f.err
}

type fakeNotify struct {
	chat  int64
	texts []string
	err   error
}

func (f *fakeNotify) Send(_ context.Context, chatID int64, text string) error {
	f.chat = chatID
	f.texts = append(f.texts, text)
	return f.err
}

func newTestSvc(src *fakeSource, sc *fakeScorer, nt *fakeNotify) *Svc {
	return New(src, sc, nt, NewFormatter("en", "BRL"))
}

func update(text string) domain.Update {
	return domain.Update{
		UpdateID: 9,
		Message: &domain.Message{
			MessageID: 1,
			Chat:      domain.Chat{ID: 4242},
			Text:      text,
		},
	}
}

func onlyReply(t *testing.T, nt *fakeNotify) string {
	t.Helper()
	if len(nt.texts) != 1 {
		t.Fatalf("sent %d replies, want 1: %q", len(nt.texts), nt.texts)
	}
	return nt.texts[0]
}

func TestHandle_RepliesWithForecast(t *testing.T) {
	src := &fakeSource{rows: []domain.RawRow{{"Store": int64(22)}, {"Store": int64(22)}}}
	sc := &fakeScorer{totals: []domain.StoreTotal{{Store: 22, Sales: 241500.32, HorizonDays: 42}}}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), update("/22")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if src.store != 22 {
		t.Fatalf("source asked for store %d", src.store)
	}
	if sc.rows != 2 {
		t.Fatalf("scorer got %d rows, want 2", sc.rows)
	}
	if nt.chat != 4242 {
		t.Fatalf("replied to chat %d", nt.chat)
	}
	want := "Store 22 will sell R$ 241,500.32 in the next 6 weeks."
	if got := onlyReply(t, nt); got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}

func TestHandle_UpdateWithoutMessageIsIgnored(t *testing.T) {
	src := &fakeSource{}
	sc := &fakeScorer{}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), domain.Update{UpdateID: 3}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(nt.texts) != 0 || src.calls != 0 || sc.calls != 0 {
		t.Fatalf("nothing should run without a message: sends=%d source=%d scorer=%d",
			len(nt.texts), src.calls, sc.calls)
	}
}

func TestHandle_BadCommandGetsUsage(t *testing.T) {
	for _, text := range []string{"/help", "hello there", "", "/0"} {
		src := &fakeSource{}
		nt := &fakeNotify{}
		s := newTestSvc(src, &fakeScorer{}, nt)

		if err := s.Handle(context.Background(), update(text)); err != nil {
			t.Fatalf("Handle(%q): %v", text, err)
		}
		if got := onlyReply(t, nt); got != usageText {
			t.Fatalf("Handle(%q) reply = %q, want usage", text, got)
		}
		if src.calls != 0 {
			t.Fatalf("Handle(%q) should not hit the source", text)
		}
	}
}

func TestHandle_UnknownStoreGetsNotFound(t *testing.T) {
	src := &fakeSource{err: perr.NotFoundf("store 99 not in horizon dataset")}
	sc := &fakeScorer{}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), update("/99")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := onlyReply(t, nt); got != notFoundText {
		t.Fatalf("reply = %q, want %q", got, notFoundText)
	}
	if sc.calls != 0 {
		t.Fatalf("scorer should not run for an unknown store")
	}
}

func TestHandle_SourceOutageGetsApology(t *testing.T) {
	src := &fakeSource{err: perr.Unavailablef("horizon dataset unavailable")}
	nt := &fakeNotify{}
	s := newTestSvc(src, &fakeScorer{}, nt)

	if err := s.Handle(context.Background(), update("/5")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := onlyReply(t, nt); got != unavailableText {
		t.Fatalf("reply = %q, want %q", got, unavailableText)
	}
}

func TestHandle_PredictFailureGetsApology(t *testing.T) {
	src := &fakeSource{rows: []domain.RawRow{{"Store": int64(5)}}}
	sc := &fakeScorer{err: perr.Unavailablef("predict rejected: boom")}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), update("/5")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := onlyReply(t, nt); got != unavailableText {
		t.Fatalf("reply = %q, want %q", got, unavailableText)
	}
}

func TestHandle_NoScoredDaysGetsNotFound(t *testing.T) {
	// scorer drops closed days; a store closed all horizon has no total
	src := &fakeSource{rows: []domain.RawRow{{"Store": int64(5)}}}
	sc := &fakeScorer{totals: nil}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), update("/5")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := onlyReply(t, nt); got != notFoundText {
		t.Fatalf("reply = %q, want %q", got, notFoundText)
	}
}

func TestHandle_OtherStoreTotalsIgnored(t *testing.T) {
	src := &fakeSource{rows: []domain.RawRow{{"Store": int64(5)}}}
	sc := &fakeScorer{totals: []domain.StoreTotal{{Store: 7, Sales: 10, HorizonDays: 1}}}
	nt := &fakeNotify{}
	s := newTestSvc(src, sc, nt)

	if err := s.Handle(context.Background(), update("/5")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := onlyReply(t, nt); got != notFoundText {
		t.Fatalf("reply = %q, want %q", got, notFoundText)
	}
}

func TestHandle_SendFailurePropagates(t *testing.T) {
	src := &fakeSource{rows: []domain.RawRow{{"Store": int64(5)}}}
	sc := &fakeScorer{totals: []domain.StoreTotal{{Store: 5, Sales: 10, HorizonDays: 1}}}
	nt := &fakeNotify{err: errors.New("telegram down")}
	s := newTestSvc(src, sc, nt)

	err := s.Handle(context.Background(), update("/5"))
	if err == nil {
		t.Fatalf("expected send failure to surface")
	}
}

func TestNew_PanicsWithoutEssentials(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nil source")
		}
	}()
	New(nil, &fakeScorer{}, &fakeNotify{}, nil)
}
