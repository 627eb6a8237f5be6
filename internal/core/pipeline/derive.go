package pipeline

import (
	"math"
	"strings"
	"time"
)

// ElapsedSentinel marks elapsed-time features with no real anchor: stores
// without competitor data, stores outside promotion 2, and dates before the
// promotion started. Distinct from every genuine value, which are clipped
// to be non-negative
const ElapsedSentinel = -1

// cyclical encoding periods
const (
	periodDayOfWeek  = 7
	periodMonth      = 12
	periodDay        = 30
	periodWeekOfYear = 52
)

// Derived extends a resolved record with every computed attribute the
// encoder consumes. Derivation runs exactly once per record; Encode takes
// Derived, not Resolved, so a record cannot pass through this stage twice
type Derived struct {
	Resolved

	Year       int
	Month      int
	Day        int
	WeekOfYear int

	CompetitionTimeMonth int
	PromoTimeWeek        int
	IsPromo              int

	DayOfWeekSin, DayOfWeekCos   float64
	MonthSin, MonthCos           float64
	DaySin, DayCos               float64
	WeekOfYearSin, WeekOfYearCos float64
}

// Derive computes calendar parts, elapsed competitor months, elapsed
// promotion weeks, the interval-month promotion flag and the cyclical
// projections. Pure arithmetic over resolved records; never errors
func Derive(rs []Resolved) []Derived {
	out := make([]Derived, len(rs))
	for i, r := range rs {
		out[i] = deriveRecord(r)
	}
	return out
}

func deriveRecord(r Resolved) Derived {
	d := Derived{Resolved: r}

	d.Year = r.Date.Year()
	d.Month = int(r.Date.Month())
	d.Day = r.Date.Day()
	_, d.WeekOfYear = r.Date.ISOWeek()

	d.CompetitionTimeMonth = competitionTimeMonth(r)
	d.PromoTimeWeek = promoTimeWeek(r)
	d.IsPromo = isPromo(r.PromoInterval, r.Date.Month())

	d.DayOfWeekSin, d.DayOfWeekCos = cyclical(float64(r.DayOfWeek), periodDayOfWeek)
	d.MonthSin, d.MonthCos = cyclical(float64(d.Month), periodMonth)
	d.DaySin, d.DayCos = cyclical(float64(d.Day), periodDay)
	d.WeekOfYearSin, d.WeekOfYearCos = cyclical(float64(d.WeekOfYear), periodWeekOfYear)
	return d
}

// competitionTimeMonth counts whole months since the competitor opened,
// clipped to zero for competitors opening in the future. Sentinel when the
// store has no competitor anchor
func competitionTimeMonth(r Resolved) int {
	if !r.HasCompetitionSince {
		return ElapsedSentinel
	}
	months := (r.Date.Year()-r.CompetitionOpenSinceYear)*12 +
		(int(r.Date.Month()) - r.CompetitionOpenSinceMonth)
	if months < 0 {
		return 0
	}
	return months
}

// promoTimeWeek counts whole weeks since the promotion-2 start. Sentinel
// when the store is outside promotion 2 or the date precedes the start
func promoTimeWeek(r Resolved) int {
	if !r.HasPromo2Since {
		return ElapsedSentinel
	}
	start := promo2Start(r.Promo2SinceYear, r.Promo2SinceWeek)
	days := int(r.Date.Sub(start).Hours() / 24)
	if days < 0 {
		return ElapsedSentinel
	}
	return days / 7
}

// promo2Start anchors a (year, ISO week) pair to a date: the Monday of that
// ISO week, shifted one week back so the week named in the anchor counts as
// week one of the promotion
func promo2Start(year, week int) time.Time {
	// January 4th always falls in ISO week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1 := jan4.AddDate(0, 0, 1-isoWeekday(jan4))
	return week1.AddDate(0, 0, (week-1)*7-7)
}

// isPromo reports whether the record's month is named in the store's
// promotion interval, e.g. August in "Feb,May,Aug,Nov". Matching is by
// prefix: source data spells September "Sept"
func isPromo(interval string, month time.Month) int {
	if interval == "" || interval == "none" {
		return 0
	}
	abbr := strings.ToLower(month.String()[:3])
	for _, part := range strings.Split(interval, ",") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(part)), abbr) {
			return 1
		}
	}
	return 0
}

// cyclical projects an ordinal onto the unit circle so the feature space
// keeps period boundaries adjacent (December borders January, Sunday
// borders Monday)
func cyclical(v, period float64) (sin, cos float64) {
	theta := v * (2 * math.Pi / period)
	return math.Sin(theta), math.Cos(theta)
}
