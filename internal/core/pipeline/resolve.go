package pipeline

import "time"

// MissingCompetitionDistance stands in when a store has no recorded
// competitor distance. Far beyond the observed maximum, it keeps the store
// scoreable while pushing the feature to the "effectively no competitor" end
// of the scale
const MissingCompetitionDistance = 200000.0

// Resolved is a record with every hole filled. The Has flags remember which
// values were genuine so the deriver can tell imputed calendar parts from
// real competitor and promotion timelines
type Resolved struct {
	Store         int64
	Date          time.Time
	DayOfWeek     int
	Open          bool
	Promo         bool
	StateHoliday  string
	SchoolHoliday bool
	StoreType     string
	Assortment    string

	CompetitionDistance       float64
	CompetitionOpenSinceMonth int
	CompetitionOpenSinceYear  int
	HasCompetitionSince       bool

	Promo2          bool
	Promo2SinceWeek int
	Promo2SinceYear int
	HasPromo2Since  bool

	PromoInterval string // "none" when no extended promotion applies

	Sales    float64
	HasSales bool
}

// Resolve fills missing values with the fitted policy: absent competitor
// distance becomes MissingCompetitionDistance, absent competitor open dates
// become the record's own calendar parts, absent promotion-2 anchors become
// the record's own year and ISO week. Never errors; every record resolves
func Resolve(recs []Record) []Resolved {
	out := make([]Resolved, len(recs))
	for i, rec := range recs {
		out[i] = resolveRecord(rec)
	}
	return out
}

func resolveRecord(rec Record) Resolved {
	r := Resolved{
		Store:         rec.Store,
		Date:          rec.Date,
		DayOfWeek:     rec.DayOfWeek,
		Open:          rec.Open,
		Promo:         rec.Promo,
		StateHoliday:  rec.StateHoliday,
		SchoolHoliday: rec.SchoolHoliday,
		StoreType:     rec.StoreType,
		Assortment:    rec.Assortment,
		PromoInterval: rec.PromoInterval,
	}

	if rec.CompetitionDistance != nil {
		r.CompetitionDistance = *rec.CompetitionDistance
	} else {
		r.CompetitionDistance = MissingCompetitionDistance
	}

	if rec.CompetitionOpenSinceMonth != nil && rec.CompetitionOpenSinceYear != nil {
		r.CompetitionOpenSinceMonth = *rec.CompetitionOpenSinceMonth
		r.CompetitionOpenSinceYear = *rec.CompetitionOpenSinceYear
		r.HasCompetitionSince = true
	} else {
		r.CompetitionOpenSinceMonth = int(rec.Date.Month())
		r.CompetitionOpenSinceYear = rec.Date.Year()
	}

	if rec.Promo2 && rec.Promo2SinceWeek != nil && rec.Promo2SinceYear != nil {
		r.Promo2SinceWeek = *rec.Promo2SinceWeek
		r.Promo2SinceYear = *rec.Promo2SinceYear
		r.HasPromo2Since = true
	} else {
		y, wk := rec.Date.ISOWeek()
		r.Promo2SinceWeek = wk
		r.Promo2SinceYear = y
	}
	r.Promo2 = rec.Promo2

	if r.PromoInterval == "" {
		r.PromoInterval = "none"
	}

	if rec.Sales != nil {
		r.Sales = *rec.Sales
		r.HasSales = true
	}
	return r
}
