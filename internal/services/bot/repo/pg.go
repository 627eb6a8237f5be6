// Package repo provides the bot's horizon sources and the forecast API client
package repo

import (
	"context"
	"time"

	"storecast/internal/core/pipeline"
	"storecast/internal/modkit/repokit"
	perr "storecast/internal/platform/errors"
	pstore "storecast/internal/platform/store"
	str "storecast/internal/platform/strings"
	"storecast/internal/services/bot/domain"
)

type (
	// PG reads a store's scoring horizon from the seeded schedule tables
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres horizon source binder
func NewPG() repokit.Binder[domain.HorizonSource] { return PG{} }

// Bind binds a Postgres queryer to the HorizonSource implementation
func (PG) Bind(q repokit.Queryer) domain.HorizonSource { return &queries{q: q} }

// horizonRow is one schedule day joined with its store metadata
type horizonRow struct {
	Store         int64
	Date          time.Time
	DayOfWeek     int
	Open          bool
	Promo         bool
	StateHoliday  string
	SchoolHoliday bool
	StoreType     string
	Assortment    string
	CompDistance  *float64
	CompMonth     *int
	CompYear      *int
	Promo2        bool
	Promo2Week    *int
	Promo2Year    *int
	PromoInterval *string
}

func (r *queries) RowsForStore(ctx context.Context, store int64) ([]domain.RawRow, error) {
	const sql = `
select s.store_id, s.date, s.day_of_week, s.open, s.promo, s.state_holiday, s.school_holiday,
st.store_type, st.assortment, st.competition_distance,
st.competition_open_since_month, st.competition_open_since_year,
st.promo2, st.promo2_since_week, st.promo2_since_year, st.promo_interval
from schedule s
join stores st on st.id = s.store_id
where s.store_id = $1
order by s.date
`
	out, err := pstore.Many(ctx, r.q, scanHorizon, sql, store)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, perr.NotFoundf("store %d has no scheduled days", store)
	}
	return out, nil
}

func scanHorizon(row pstore.Row) (domain.RawRow, error) {
	var h horizonRow
	if err := row.Scan(
		&h.Store,
		&h.Date,
		&h.DayOfWeek,
		&h.Open,
		&h.Promo,
		&h.StateHoliday,
		&h.SchoolHoliday,
		&h.StoreType,
		&h.Assortment,
		&h.CompDistance,
		&h.CompMonth,
		&h.CompYear,
		&h.Promo2,
		&h.Promo2Week,
		&h.Promo2Year,
		&h.PromoInterval,
	); err != nil {
		return nil, err
	}
	return h.raw(), nil
}

// raw maps a scanned row onto the wire shape the prediction API accepts.
// Nullable columns only enter the map when present, so the pipeline's
// per-column defaulting applies to the rest
func (h horizonRow) raw() domain.RawRow {
	row := domain.RawRow{
		pipeline.ColStore:         h.Store,
		pipeline.ColDate:          h.Date,
		pipeline.ColDayOfWeek:     h.DayOfWeek,
		pipeline.ColOpen:          h.Open,
		pipeline.ColPromo:         h.Promo,
		pipeline.ColStateHoliday:  h.StateHoliday,
		pipeline.ColSchoolHoliday: h.SchoolHoliday,
		pipeline.ColStoreType:     h.StoreType,
		pipeline.ColAssortment:    h.Assortment,
		pipeline.ColPromo2:        h.Promo2,
	}
	if h.CompDistance != nil {
		row[pipeline.ColCompetitionDistance] = *h.CompDistance
	}
	if h.CompMonth != nil {
		row[pipeline.ColCompetitionOpenSinceMonth] = *h.CompMonth
	}
	if h.CompYear != nil {
		row[pipeline.ColCompetitionOpenSinceYear] = *h.CompYear
	}
	if h.Promo2Week != nil {
		row[pipeline.ColPromo2SinceWeek] = *h.Promo2Week
	}
	if h.Promo2Year != nil {
		row[pipeline.ColPromo2SinceYear] = *h.Promo2Year
	}
	if s := str.Deref(h.PromoInterval); s != "" {
		row[pipeline.ColPromoInterval] = s
	}
	return row
}
