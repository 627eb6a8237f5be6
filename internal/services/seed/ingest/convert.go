package ingest

import (
	"storecast/internal/core/pipeline"
	"storecast/internal/services/seed/domain"
)

// Split separates normalized records into store metadata and horizon days.
// Store metadata is deduplicated by id; the first record wins
func Split(recs []pipeline.Record) ([]domain.Store, []domain.ScheduleDay) {
	seen := make(map[int64]struct{}, 64)
	var stores []domain.Store
	days := make([]domain.ScheduleDay, 0, len(recs))

	for _, rec := range recs {
		if _, ok := seen[rec.Store]; !ok {
			seen[rec.Store] = struct{}{}
			stores = append(stores, domain.Store{
				ID:                        rec.Store,
				StoreType:                 rec.StoreType,
				Assortment:                rec.Assortment,
				CompetitionDistance:       rec.CompetitionDistance,
				CompetitionOpenSinceMonth: rec.CompetitionOpenSinceMonth,
				CompetitionOpenSinceYear:  rec.CompetitionOpenSinceYear,
				Promo2:                    rec.Promo2,
				Promo2SinceWeek:           rec.Promo2SinceWeek,
				Promo2SinceYear:           rec.Promo2SinceYear,
				PromoInterval:             rec.PromoInterval,
			})
		}
		days = append(days, domain.ScheduleDay{
			Store:         rec.Store,
			Date:          rec.Date,
			DayOfWeek:     rec.DayOfWeek,
			Open:          rec.Open,
			Promo:         rec.Promo,
			StateHoliday:  rec.StateHoliday,
			SchoolHoliday: rec.SchoolHoliday,
		})
	}
	return stores, days
}
