package pipeline

import (
	"time"

	"storecast/internal/core/featurestate"
	perr "storecast/internal/platform/errors"
)

// RowKey identifies which (store, date) a feature vector or prediction
// belongs to once rows have been filtered and reordered
type RowKey struct {
	Store int64
	Date  time.Time
}

// Frame is an encoded batch: one fully numeric row per surviving record,
// columns in the state-determined layout
type Frame struct {
	Names []string
	Rows  [][]float64
	Keys  []RowKey

	idx map[string]int
}

// Column returns the position of a named column
func (f *Frame) Column(name string) (int, bool) {
	i, ok := f.idx[name]
	return i, ok
}

// At reads one cell by column name. Panics on unknown columns; reserved for
// tests and diagnostics
func (f *Frame) At(row int, name string) float64 {
	i, ok := f.idx[name]
	if !ok {
		panic("pipeline: no column " + name)
	}
	return f.Rows[row][i]
}

// Encode turns derived records into the numeric frame using only fitted
// parameters: scalers rescale, vocabularies and ranks code categories, and
// indicator columns span the fitted universe regardless of which categories
// the batch happens to contain
func Encode(st *featurestate.State, ds []Derived) (*Frame, error) {
	layout := columnLayout(st)
	f := &Frame{
		Names: layout,
		Rows:  make([][]float64, 0, len(ds)),
		Keys:  make([]RowKey, 0, len(ds)),
		idx:   make(map[string]int, len(layout)),
	}
	for i, name := range layout {
		f.idx[name] = i
	}

	for _, d := range ds {
		row, err := encodeRecord(st, layout, d)
		if err != nil {
			return nil, perr.Wrapf(err, perr.CodeOf(err), "store %d on %s",
				d.Store, d.Date.Format("2006-01-02"))
		}
		f.Rows = append(f.Rows, row)
		f.Keys = append(f.Keys, RowKey{Store: d.Store, Date: d.Date})
	}
	return f, nil
}

func encodeRecord(st *featurestate.State, layout []string, d Derived) ([]float64, error) {
	row := make([]float64, 0, len(layout))
	for _, col := range layout {
		v, err := columnValue(st, col, d)
		if err != nil {
			return nil, err
		}
		if sc, ok := st.Scalers[col]; ok {
			v = sc.Apply(v)
		}
		row = append(row, v)
	}
	return row, nil
}

// columnValue produces the pre-scaling value of one column
func columnValue(st *featurestate.State, col string, d Derived) (float64, error) {
	switch col {
	case ColStore:
		return float64(d.Store), nil
	case ColDayOfWeek:
		return float64(d.DayOfWeek), nil
	case ColPromo:
		return flag(d.Promo), nil
	case ColSchoolHoliday:
		return flag(d.SchoolHoliday), nil
	case ColStoreType:
		code, err := st.Code(ColStoreType, d.StoreType)
		return float64(code), err
	case ColAssortment:
		rank, err := st.Rank(ColAssortment, d.Assortment)
		return float64(rank), err
	case ColCompetitionDistance:
		return d.CompetitionDistance, nil
	case ColCompetitionOpenSinceMonth:
		return float64(d.CompetitionOpenSinceMonth), nil
	case ColCompetitionOpenSinceYear:
		return float64(d.CompetitionOpenSinceYear), nil
	case ColPromo2:
		return flag(d.Promo2), nil
	case ColPromo2SinceWeek:
		return float64(d.Promo2SinceWeek), nil
	case ColPromo2SinceYear:
		return float64(d.Promo2SinceYear), nil
	case ColYear:
		return float64(d.Year), nil
	case ColMonth:
		return float64(d.Month), nil
	case ColDay:
		return float64(d.Day), nil
	case ColWeekOfYear:
		return float64(d.WeekOfYear), nil
	case ColCompetitionTimeMonth:
		return float64(d.CompetitionTimeMonth), nil
	case ColPromoTimeWeek:
		return float64(d.PromoTimeWeek), nil
	case ColIsPromo:
		return float64(d.IsPromo), nil
	case ColDayOfWeekSin:
		return d.DayOfWeekSin, nil
	case ColDayOfWeekCos:
		return d.DayOfWeekCos, nil
	case ColMonthSin:
		return d.MonthSin, nil
	case ColMonthCos:
		return d.MonthCos, nil
	case ColDaySin:
		return d.DaySin, nil
	case ColDayCos:
		return d.DayCos, nil
	case ColWeekOfYearSin:
		return d.WeekOfYearSin, nil
	case ColWeekOfYearCos:
		return d.WeekOfYearCos, nil
	}

	if field, cat, ok := splitIndicator(st, col); ok {
		return indicatorValue(st, field, cat, d)
	}
	return 0, perr.WithField(perr.FeatureMismatchf("no producer for column %q", col), col)
}

// splitIndicator matches a layout column against the fitted indicator
// fields, longest field name first so underscores in category labels cannot
// mis-split
func splitIndicator(st *featurestate.State, col string) (field, category string, ok bool) {
	for f, cats := range st.Indicators {
		prefix := f + "_"
		if len(col) <= len(prefix) || col[:len(prefix)] != prefix {
			continue
		}
		cat := col[len(prefix):]
		for _, c := range cats {
			if c == cat {
				return f, cat, true
			}
		}
	}
	return "", "", false
}

func indicatorValue(st *featurestate.State, field, category string, d Derived) (float64, error) {
	val, err := fieldValue(field, d)
	if err != nil {
		return 0, err
	}
	universe, err := st.Universe(field)
	if err != nil {
		return 0, err
	}
	known := false
	for _, c := range universe {
		if c == val {
			known = true
			break
		}
	}
	if !known {
		return 0, perr.WithField(
			perr.UnknownCategoryf("%s value %q not in fitted universe", field, val), field)
	}
	if val == category {
		return 1, nil
	}
	return 0, nil
}

// fieldValue reads the raw categorical value an indicator field expands
func fieldValue(field string, d Derived) (string, error) {
	switch field {
	case ColStateHoliday:
		return d.StateHoliday, nil
	case ColStoreType:
		return d.StoreType, nil
	case ColAssortment:
		return d.Assortment, nil
	}
	return "", perr.WithField(
		perr.FeatureMismatchf("no categorical source for indicator field %q", field), field)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
