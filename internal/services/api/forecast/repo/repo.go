// Package repo provides the clickhouse audit sink for issued forecasts
package repo

import (
	"context"
	"time"

	"storecast/internal/core/pipeline"
	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/store"
)

// Audit records issued forecasts and reads them back per store
type Audit interface {
	Insert(ctx context.Context, batchID string, issuedAt time.Time, preds []pipeline.Prediction) error
	RecentByStore(ctx context.Context, storeID int64, limit int) ([]Row, error)
}

// Row is one audited prediction
type Row struct {
	BatchID  string
	Store    int64
	Date     time.Time
	Sales    float64
	IssuedAt time.Time
}

// Table is the audit sink table, ordered by (store, issued_at)
const Table = "forecast_predictions"

// CH implements Audit over the clickhouse seam
type CH struct{ db store.Clickhouse }

// NewCH binds the audit repo to a clickhouse seam, nil is allowed and
// turns Insert into a no-op so the API can run without the sink
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// Insert writes one row per prediction in a single batch
func (c *CH) Insert(ctx context.Context, batchID string, issuedAt time.Time, preds []pipeline.Prediction) error {
	if c.db == nil || len(preds) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, []any{batchID, p.Store, p.Date, p.Sales, issuedAt})
	}
	return c.db.Insert(ctx, Table, rows)
}

// RecentByStore returns the newest issued forecasts for one store,
// most recent batch first, horizon order within a batch
func (c *CH) RecentByStore(ctx context.Context, storeID int64, limit int) ([]Row, error) {
	if c.db == nil {
		return nil, perr.Unavailablef("forecast audit sink is not configured")
	}
	const sql = `
SELECT batch_id, store, date, sales, issued_at
FROM forecast_predictions
WHERE store = ?
ORDER BY issued_at DESC, date ASC
LIMIT ?
`
	rows, err := c.db.Query(ctx, sql, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.BatchID, &r.Store, &r.Date, &r.Sales, &r.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
