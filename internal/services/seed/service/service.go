// Package service provides the seed loader implementation
package service

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"storecast/internal/core/pipeline"
	"storecast/internal/modkit/repokit"
	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/logger"
	pstore "storecast/internal/platform/store"
	"storecast/internal/services/seed/domain"
	"storecast/internal/services/seed/ingest"
)

// Config holds tuning for the seed loader
type Config struct {
	Workers    int           // parallel schedule chunks; <=0 -> 1
	ChunkSize  int           // rows per insert Tx; <=0 -> 500
	MaxRetries int           // attempts per chunk; <=0 -> 1
	RetryBase  time.Duration // base backoff between chunk retries; <=0 -> 250ms
}

// Service implements domain.LoaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Source domain.Source
	Cfg    Config
}

// New constructs the seed service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	src domain.Source,
	cfg Config,
) *Service {
	if db == nil {
		panic("seed.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("seed.Service requires a non nil Repo binder")
	}
	if src == nil {
		panic("seed.Service requires a row source")
	}
	return &Service{DB: db, Binder: binder, Source: src, Cfg: cfg}
}

// Load implements domain.LoaderPort. It reads the merged horizon corpora,
// runs them through the shared normalizer and upserts stores before
// schedule days so foreign keys always resolve
func (s *Service) Load(ctx context.Context, schedulePath, storePath string) (domain.Summary, error) {
	started := time.Now()
	var sum domain.Summary

	rows, err := s.Source.Rows(schedulePath, storePath)
	if err != nil {
		return sum, err
	}
	sum.RowsRead = len(rows)

	recs, err := pipeline.Normalize(rows)
	if err != nil {
		return sum, err
	}

	stores, days := ingest.Split(recs)
	sum.Stores, sum.Days = len(stores), len(days)

	written, err := s.upsertStores(ctx, stores)
	sum.StoresWritten = written
	if err != nil {
		sum.Elapsed = time.Since(started)
		return sum, err
	}

	daysWritten, err := s.upsertSchedule(ctx, days)
	sum.DaysWritten = daysWritten
	sum.Elapsed = time.Since(started)
	if err != nil {
		return sum, err
	}

	evt := logger.C(ctx).Info().
		Int("rows", sum.RowsRead).
		Int("stores", sum.StoresWritten).
		Int("days", sum.DaysWritten).
		Dur("elapsed", sum.Elapsed)
	// post load table totals; a failed count only costs the log fields
	if total, cerr := pstore.Scalar[int64](ctx, s.DB, `select count(*) from stores`); cerr == nil {
		evt = evt.Int64("stores_total", total)
	}
	if total, cerr := pstore.Scalar[int64](ctx, s.DB, `select count(*) from schedule`); cerr == nil {
		evt = evt.Int64("schedule_total", total)
	}
	evt.Msg("seed: load complete")
	return sum, nil
}

func (s *Service) upsertStores(ctx context.Context, stores []domain.Store) (int, error) {
	chunk := s.chunk()
	written := 0
	for i := 0; i < len(stores); i += chunk {
		end := min(i+chunk, len(stores))
		var n int
		err := s.withRetry(ctx, func(c context.Context) error {
			return repokit.WithTx(c, s.DB, func(q repokit.Queryer) error {
				w, e := s.Binder.Bind(q).UpsertStores(c, stores[i:end])
				if e == nil {
					n = w
				}
				return e
			})
		})
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// upsertSchedule fans chunks out to a small worker pool; each chunk is its
// own transaction so a failed chunk never rolls back its neighbors
func (s *Service) upsertSchedule(ctx context.Context, days []domain.ScheduleDay) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}
	chunk := s.chunk()
	w := max(s.Cfg.Workers, 1)

	jobs := make(chan []domain.ScheduleDay, w)
	var written, fails int64
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for batch := range jobs {
			var n int
			err := s.withRetry(ctx, func(c context.Context) error {
				return repokit.WithTx(c, s.DB, func(q repokit.Queryer) error {
					got, e := s.Binder.Bind(q).UpsertSchedule(c, batch)
					if e == nil {
						n = got
					}
					return e
				})
			})
			if err != nil {
				logger.C(ctx).Error().Err(err).
					Int("batch", len(batch)).
					Msg("seed: schedule chunk failed")
				atomic.AddInt64(&fails, 1)
				continue
			}
			atomic.AddInt64(&written, int64(n))
		}
	}

	for range w {
		wg.Add(1)
		go worker()
	}

feed:
	for i := 0; i < len(days); i += chunk {
		end := min(i+chunk, len(days))
		select {
		case <-ctx.Done():
			break feed
		case jobs <- days[i:end]:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return int(written), err
	}
	if fails > 0 {
		return int(written), perr.Internalf("%d schedule chunks failed", fails)
	}
	return int(written), nil
}

func (s *Service) withRetry(ctx context.Context, do func(context.Context) error) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}

	var last error
	for i := range attempts {
		err := do(ctx)
		if err == nil {
			return nil
		}
		last = err
		if !perr.Retryable(err) || i == attempts-1 {
			break
		}
		// Exponential backoff with jitter, cap at 10s
		d := min(base<<i, 10*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)))
		if se := sleepCtx(ctx, j); se != nil {
			return se
		}
	}
	return last
}

func (s *Service) chunk() int {
	if s.Cfg.ChunkSize <= 0 {
		return 500
	}
	return s.Cfg.ChunkSize
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
