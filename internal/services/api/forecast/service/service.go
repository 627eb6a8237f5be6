// Package service contains forecast workflows
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storecast/internal/core/pipeline"
	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/logger"
	"storecast/internal/services/api/forecast/domain"
	"storecast/internal/services/api/forecast/repo"
)

// Service defines the forecast service contract
type Service interface {
	domain.ServicePort
}

// auditTimeout bounds the fire-and-forget sink write
const auditTimeout = 5 * time.Second

// Svc implements the forecast service. One Svc serves the whole process;
// the pipeline it wraps is immutable after construction
type Svc struct {
	pipe  *pipeline.Pipeline
	audit repo.Audit

	now   func() time.Time
	newID func() string

	// synchronous audit is a test seam, production inserts run detached
	syncAudit bool
}

// New constructs a forecast service bound to a built pipeline
func New(pipe *pipeline.Pipeline, audit repo.Audit) *Svc {
	if pipe == nil {
		panic("forecast.Service requires a built pipeline")
	}
	return &Svc{
		pipe:  pipe,
		audit: audit,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Predict transforms and scores one batch, assigns it a batch id, and
// audits the issued predictions. The audit write is off the request path
// and never fails the response
func (s *Svc) Predict(ctx context.Context, in domain.PredictRequest) (domain.PredictResponse, error) {
	rows := make([]pipeline.Row, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, pipeline.Row(r))
	}

	preds, err := s.pipe.Run(rows)
	if err != nil {
		return domain.PredictResponse{}, err
	}

	batchID := s.newID()
	issuedAt := s.now().UTC()

	out := domain.PredictResponse{
		BatchID:     batchID,
		Predictions: make([]domain.PredictionRow, 0, len(preds)),
		Totals:      totals(preds),
	}
	for _, p := range preds {
		out.Predictions = append(out.Predictions, domain.PredictionRow{
			Store: p.Store,
			Date:  p.Date.Format("2006-01-02"),
			Sales: p.Sales,
		})
	}

	if s.audit != nil && len(preds) > 0 {
		// keep request scoped log fields but detach from request cancellation
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		write := func() {
			defer cancel()
			if err := s.audit.Insert(actx, batchID, issuedAt, preds); err != nil {
				logger.C(actx).Warn().
					Err(err).
					Str("batch_id", batchID).
					Int("rows", len(preds)).
					Msg("forecast audit insert failed")
			}
		}
		if s.syncAudit {
			write()
		} else {
			go write()
		}
	}

	return out, nil
}

// State reports the fitted artifacts the pipeline was built with
func (s *Svc) State(_ context.Context) (domain.StateResponse, error) {
	st := s.pipe.State()

	sizes := make(map[string]int, len(st.Vocabs))
	for field, vocab := range st.Vocabs {
		sizes[field] = len(vocab)
	}

	info := domain.ModelInfo{Features: s.pipe.Scorer().Features()}
	if d, ok := s.pipe.Scorer().(interface {
		Kind() string
		Trees() int
	}); ok {
		info.Kind = d.Kind()
		info.Trees = d.Trees()
	}

	return domain.StateResponse{
		Version:    st.Version,
		TrainedAt:  st.TrainedAt.UTC().Format(time.RFC3339),
		Features:   len(st.Selected),
		Selected:   append([]string(nil), st.Selected...),
		VocabSizes: sizes,
		Model:      info,
	}, nil
}

// History returns recent issued forecasts for one store from the audit sink
func (s *Svc) History(ctx context.Context, storeID int64, limit int) ([]domain.HistoryRow, error) {
	if s.audit == nil {
		return nil, perr.Unavailablef("forecast audit sink is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	rows, err := s.audit.RecentByStore(ctx, storeID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.HistoryRow{
			BatchID:  r.BatchID,
			Store:    r.Store,
			Date:     r.Date.Format("2006-01-02"),
			Sales:    r.Sales,
			IssuedAt: r.IssuedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// totals sums scored sales per store in first-seen order
func totals(preds []pipeline.Prediction) []domain.StoreTotal {
	idx := make(map[int64]int, 8)
	out := make([]domain.StoreTotal, 0, 8)
	for _, p := range preds {
		i, ok := idx[p.Store]
		if !ok {
			i = len(out)
			idx[p.Store] = i
			out = append(out, domain.StoreTotal{Store: p.Store})
		}
		out[i].Sales += p.Sales
		out[i].HorizonDays++
	}
	return out
}
