// Package domain holds the row shapes and ports for the horizon seeder
package domain

import (
	"time"

	"storecast/internal/core/pipeline"
)

// RawRow re-exports the raw row shape produced by the dataset reader
type RawRow = pipeline.Row

// Store is one row of the stores table: slow-changing per-store metadata
type Store struct {
	ID         int64
	StoreType  string
	Assortment string

	CompetitionDistance       *float64
	CompetitionOpenSinceMonth *int
	CompetitionOpenSinceYear  *int

	Promo2          bool
	Promo2SinceWeek *int
	Promo2SinceYear *int
	PromoInterval   string
}

// ScheduleDay is one row of the schedule table: one store-date of the
// upcoming horizon
type ScheduleDay struct {
	Store         int64
	Date          time.Time
	DayOfWeek     int // 1=Monday .. 7=Sunday
	Open          bool
	Promo         bool
	StateHoliday  string // canonical: public | easter | christmas | none
	SchoolHoliday bool
}

// Summary reports what one load pass read and wrote
type Summary struct {
	RowsRead      int
	Stores        int
	StoresWritten int
	Days          int
	DaysWritten   int
	Elapsed       time.Duration
}
