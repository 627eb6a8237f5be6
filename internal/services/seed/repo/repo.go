// Package repo provides postgres access for seed writes
package repo

import (
	"context"
	"fmt"

	"storecast/internal/modkit/repokit"
	str "storecast/internal/platform/strings"
	"storecast/internal/services/seed/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// UpsertStores writes store metadata rows (idempotent per id)
func (r *queries) UpsertStores(ctx context.Context, stores []domain.Store) (int, error) {
	const upsertStoreSQL = `
		INSERT INTO stores (
			id, store_type, assortment,
			competition_distance, competition_open_since_month, competition_open_since_year,
			promo2, promo2_since_week, promo2_since_year, promo_interval
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			store_type = EXCLUDED.store_type,
			assortment = EXCLUDED.assortment,
			competition_distance = EXCLUDED.competition_distance,
			competition_open_since_month = EXCLUDED.competition_open_since_month,
			competition_open_since_year = EXCLUDED.competition_open_since_year,
			promo2 = EXCLUDED.promo2,
			promo2_since_week = EXCLUDED.promo2_since_week,
			promo2_since_year = EXCLUDED.promo2_since_year,
			promo_interval = EXCLUDED.promo_interval
	`

	written := 0
	for _, st := range stores {
		// blank promo_interval stores as NULL, matching the other absent-able columns
		tag, err := r.q.Exec(ctx, upsertStoreSQL,
			st.ID, st.StoreType, st.Assortment,
			st.CompetitionDistance, st.CompetitionOpenSinceMonth, st.CompetitionOpenSinceYear,
			st.Promo2, st.Promo2SinceWeek, st.Promo2SinceYear, str.SQLNull(st.PromoInterval),
		)
		if err != nil {
			return written, fmt.Errorf("upsert store %d: %w", st.ID, err)
		}
		if tag.RowsAffected() > 0 {
			written++
		}
	}
	return written, nil
}

// UpsertSchedule writes horizon days (idempotent per store and date)
func (r *queries) UpsertSchedule(ctx context.Context, days []domain.ScheduleDay) (int, error) {
	const upsertDaySQL = `
		INSERT INTO schedule (
			store_id, date, day_of_week, open, promo, state_holiday, school_holiday
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (store_id, date) DO UPDATE SET
			day_of_week = EXCLUDED.day_of_week,
			open = EXCLUDED.open,
			promo = EXCLUDED.promo,
			state_holiday = EXCLUDED.state_holiday,
			school_holiday = EXCLUDED.school_holiday
	`

	written := 0
	for _, d := range days {
		tag, err := r.q.Exec(ctx, upsertDaySQL,
			d.Store, d.Date, d.DayOfWeek, d.Open, d.Promo, d.StateHoliday, d.SchoolHoliday,
		)
		if err != nil {
			return written, fmt.Errorf("upsert schedule %d@%s: %w",
				d.Store, d.Date.Format("2006-01-02"), err)
		}
		if tag.RowsAffected() > 0 {
			written++
		}
	}
	return written, nil
}
