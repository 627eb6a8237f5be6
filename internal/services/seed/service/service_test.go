package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"storecast/internal/modkit/repokit"
	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/store"
	"storecast/internal/services/seed/domain"
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	panic("repo fakes bypass sql")
}

func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error) {
	panic("repo fakes bypass sql")
}

// countRow feeds the post load count queries a fixed zero
type countRow struct{}

func (countRow) Scan(dest ...any) error {
	if n, ok := dest[0].(*int64); ok {
		*n = 0
	}
	return nil
}

func (fakeTx) QueryRow(context.Context, string, ...any) store.Row { return countRow{} }

func (fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(nil)
}

type fakeRepo struct {
	mu         sync.Mutex
	order      []string
	storeRows  int
	schedRows  int
	schedCalls int
	schedErr   func(call int) error
}

func (f *fakeRepo) UpsertStores(_ context.Context, xs []domain.Store) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, "stores")
	f.storeRows += len(xs)
	return len(xs), nil
}

func (f *fakeRepo) UpsertSchedule(_ context.Context, xs []domain.ScheduleDay) (int, error) {
	f.mu.Lock()
	f.schedCalls++
	call := f.schedCalls
	f.order = append(f.order, "schedule")
	f.mu.Unlock()

	if f.schedErr != nil {
		if err := f.schedErr(call); err != nil {
			return 0, err
		}
	}

	f.mu.Lock()
	f.schedRows += len(xs)
	f.mu.Unlock()
	return len(xs), nil
}

type fakeSource struct {
	rows []domain.RawRow
	err  error
}

func (f fakeSource) Rows(_, _ string) ([]domain.RawRow, error) { return f.rows, f.err }

func rawDay(storeID int64, date string) domain.RawRow {
	return domain.RawRow{
		"Store": storeID, "Date": date, "Open": "1", "Promo": "0",
		"StateHoliday": "0", "SchoolHoliday": "0",
		"StoreType": "a", "Assortment": "c",
		"CompetitionDistance": "1270",
	}
}

func testSvc(src domain.Source, repo *fakeRepo, cfg Config) *Service {
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo {
		return repo
	})
	return New(fakeTx{}, binder, src, cfg)
}

func TestLoad_NormalizesSplitsAndUpserts(t *testing.T) {
	src := fakeSource{rows: []domain.RawRow{
		rawDay(22, "2015-08-01"),
		rawDay(22, "2015-08-02"),
		rawDay(7, "2015-08-01"),
	}}
	repo := &fakeRepo{}
	svc := testSvc(src, repo, Config{Workers: 1, ChunkSize: 2})

	sum, err := svc.Load(context.Background(), "schedule.csv", "store.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sum.RowsRead != 3 || sum.Stores != 2 || sum.Days != 3 {
		t.Fatalf("summary counts = %+v", sum)
	}
	if sum.StoresWritten != 2 || sum.DaysWritten != 3 {
		t.Fatalf("written counts = %+v", sum)
	}
	if repo.storeRows != 2 || repo.schedRows != 3 {
		t.Fatalf("repo rows = %d stores, %d days", repo.storeRows, repo.schedRows)
	}
	// ChunkSize 2 splits 3 days into two schedule batches
	if repo.schedCalls != 2 {
		t.Fatalf("schedule calls = %d, want 2", repo.schedCalls)
	}
	if len(repo.order) == 0 || repo.order[0] != "stores" {
		t.Fatalf("stores must be written before schedule: %v", repo.order)
	}
}

func TestLoad_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("no such file")
	repo := &fakeRepo{}
	svc := testSvc(fakeSource{err: boom}, repo, Config{})

	if _, err := svc.Load(context.Background(), "a", "b"); !errors.Is(err, boom) {
		t.Fatalf("want source error, got %v", err)
	}
	if len(repo.order) != 0 {
		t.Fatalf("nothing should be written: %v", repo.order)
	}
}

func TestLoad_BadRowFailsBeforeWrites(t *testing.T) {
	bad := rawDay(22, "2015-08-01")
	delete(bad, "Date")
	repo := &fakeRepo{}
	svc := testSvc(fakeSource{rows: []domain.RawRow{bad}}, repo, Config{})

	_, err := svc.Load(context.Background(), "a", "b")
	if err == nil || perr.CodeOf(err) != perr.ErrorCodeSchema {
		t.Fatalf("want schema error, got %v", err)
	}
	if len(repo.order) != 0 {
		t.Fatalf("nothing should be written: %v", repo.order)
	}
}

func TestLoad_RetriesRetryableChunk(t *testing.T) {
	src := fakeSource{rows: []domain.RawRow{rawDay(22, "2015-08-01")}}
	repo := &fakeRepo{schedErr: func(call int) error {
		if call == 1 {
			return errors.New("deadlock detected")
		}
		return nil
	}}
	svc := testSvc(src, repo, Config{MaxRetries: 3, RetryBase: time.Millisecond})

	sum, err := svc.Load(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("load should recover: %v", err)
	}
	if sum.DaysWritten != 1 {
		t.Fatalf("days written = %d, want 1", sum.DaysWritten)
	}
	if repo.schedCalls != 2 {
		t.Fatalf("schedule attempts = %d, want 2", repo.schedCalls)
	}
}

func TestLoad_FailedChunksSurface(t *testing.T) {
	src := fakeSource{rows: []domain.RawRow{
		rawDay(22, "2015-08-01"),
		rawDay(7, "2015-08-01"),
	}}
	repo := &fakeRepo{schedErr: func(int) error {
		return errors.New("value too long for column")
	}}
	svc := testSvc(src, repo, Config{Workers: 2, ChunkSize: 1})

	sum, err := svc.Load(context.Background(), "a", "b")
	if err == nil || !strings.Contains(err.Error(), "schedule chunks failed") {
		t.Fatalf("want chunk failure error, got %v", err)
	}
	if sum.StoresWritten != 2 {
		t.Fatalf("store writes should have landed first: %+v", sum)
	}
	if sum.DaysWritten != 0 {
		t.Fatalf("no schedule rows should count as written: %+v", sum)
	}
}
