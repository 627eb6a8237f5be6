package pipeline

import (
	"sort"

	"storecast/internal/core/featurestate"
)

// Canonical column names. Raw columns arrive under loose spellings and are
// mapped here by Normalize; derived and encoded columns only ever exist under
// these names
const (
	ColStore                     = "store"
	ColDate                      = "date"
	ColDayOfWeek                 = "day_of_week"
	ColOpen                      = "open"
	ColPromo                     = "promo"
	ColStateHoliday              = "state_holiday"
	ColSchoolHoliday             = "school_holiday"
	ColStoreType                 = "store_type"
	ColAssortment                = "assortment"
	ColCompetitionDistance       = "competition_distance"
	ColCompetitionOpenSinceMonth = "competition_open_since_month"
	ColCompetitionOpenSinceYear  = "competition_open_since_year"
	ColPromo2                    = "promo2"
	ColPromo2SinceWeek           = "promo2_since_week"
	ColPromo2SinceYear           = "promo2_since_year"
	ColPromoInterval             = "promo_interval"
	ColSales                     = "sales"

	ColYear                 = "year"
	ColMonth                = "month"
	ColDay                  = "day"
	ColWeekOfYear           = "week_of_year"
	ColCompetitionTimeMonth = "competition_time_month"
	ColPromoTimeWeek        = "promo_time_week"
	ColIsPromo              = "is_promo"
	ColDayOfWeekSin         = "day_of_week_sin"
	ColDayOfWeekCos         = "day_of_week_cos"
	ColMonthSin             = "month_sin"
	ColMonthCos             = "month_cos"
	ColDaySin               = "day_sin"
	ColDayCos               = "day_cos"
	ColWeekOfYearSin        = "week_of_year_sin"
	ColWeekOfYearCos        = "week_of_year_cos"
)

// columnLayout returns the full ordered encoded column set for a state.
// The base block is fixed; indicator columns extend it per the fitted
// category universe, so layout depends only on the state, never the batch
func columnLayout(st *featurestate.State) []string {
	cols := []string{
		ColStore,
		ColDayOfWeek,
		ColPromo,
		ColSchoolHoliday,
		ColStoreType,
		ColAssortment,
		ColCompetitionDistance,
		ColCompetitionOpenSinceMonth,
		ColCompetitionOpenSinceYear,
		ColPromo2,
		ColPromo2SinceWeek,
		ColPromo2SinceYear,
		ColYear,
		ColMonth,
		ColDay,
		ColWeekOfYear,
		ColCompetitionTimeMonth,
		ColPromoTimeWeek,
		ColIsPromo,
		ColDayOfWeekSin,
		ColDayOfWeekCos,
		ColMonthSin,
		ColMonthCos,
		ColDaySin,
		ColDayCos,
		ColWeekOfYearSin,
		ColWeekOfYearCos,
	}

	// deterministic indicator order: sorted fields, sorted categories within
	fields := make([]string, 0, len(st.Indicators))
	for f := range st.Indicators {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, cat := range st.Indicators[f] {
			cols = append(cols, indicatorColumn(f, cat))
		}
	}
	return cols
}

func indicatorColumn(field, category string) string { return field + "_" + category }
