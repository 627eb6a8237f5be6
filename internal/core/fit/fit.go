// Package fit estimates transformation parameters from a training corpus
// and emits them as a versioned feature state document.
//
// Fitting runs the corpus through the same normalization, resolution and
// derivation stages serving uses, then measures each scaled column and
// collects each categorical universe. Nothing here touches the model;
// regressor training happens offline and ships as its own artifact
package fit

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"storecast/internal/core/featurestate"
	"storecast/internal/core/pipeline"
	perr "storecast/internal/platform/errors"
)

// Options tunes a fit run
type Options struct {
	// TrainedAt stamps the document. Zero means now
	TrainedAt time.Time
	// Selected overrides the default feature selection
	Selected []string
}

// DefaultSelection is the feature list the offline selection study settled
// on. Fit embeds it in the document unless overridden
func DefaultSelection() []string {
	return []string{
		pipeline.ColStore,
		pipeline.ColPromo,
		pipeline.ColStoreType,
		pipeline.ColAssortment,
		pipeline.ColCompetitionDistance,
		pipeline.ColCompetitionOpenSinceMonth,
		pipeline.ColCompetitionOpenSinceYear,
		pipeline.ColPromo2,
		pipeline.ColPromo2SinceWeek,
		pipeline.ColPromo2SinceYear,
		pipeline.ColCompetitionTimeMonth,
		pipeline.ColPromoTimeWeek,
		pipeline.ColDayOfWeekSin,
		pipeline.ColDayOfWeekCos,
		pipeline.ColMonthSin,
		pipeline.ColMonthCos,
		pipeline.ColDaySin,
		pipeline.ColDayCos,
		pipeline.ColWeekOfYearSin,
		pipeline.ColWeekOfYearCos,
	}
}

// Fit derives a feature state document from raw training rows. Rows are
// normalized with the serving stages, then filtered to open days with
// positive sales before any statistic is measured
func Fit(rows []pipeline.Row, opts Options) (*featurestate.Document, error) {
	recs, err := pipeline.Normalize(rows)
	if err != nil {
		return nil, err
	}

	kept := make([]pipeline.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.Open && rec.HasSales && rec.Sales != nil && *rec.Sales > 0 {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return nil, perr.InvalidArgf("no open rows with positive sales in %d-row corpus", len(rows))
	}

	derived := pipeline.Derive(pipeline.Resolve(kept))

	doc := &featurestate.Document{
		Version:    featurestate.Version,
		TrainedAt:  opts.TrainedAt,
		Scalers:    fitScalers(derived),
		Vocabs:     map[string]map[string]int{pipeline.ColStoreType: fitVocab(derived)},
		Ordinals:   map[string]map[string]int{pipeline.ColAssortment: assortmentRanks()},
		Indicators: map[string][]string{pipeline.ColStateHoliday: fitUniverse(derived)},
		Selected:   opts.Selected,
		Meta:       corpusMeta(derived),
	}
	if doc.TrainedAt.IsZero() {
		doc.TrainedAt = time.Now().UTC()
	}
	if len(doc.Selected) == 0 {
		doc.Selected = DefaultSelection()
	}

	// compiling here surfaces degenerate scalers and unproducible
	// selections before the artifact ever leaves the fit run
	st, err := featurestate.Compile(doc)
	if err != nil {
		return nil, err
	}
	if err := pipeline.ValidateSelection(st); err != nil {
		return nil, err
	}
	return doc, nil
}

func fitScalers(ds []pipeline.Derived) []featurestate.ScalerDoc {
	distance := make([]float64, len(ds))
	months := make([]float64, len(ds))
	weeks := make([]float64, len(ds))
	years := make([]float64, len(ds))
	for i, d := range ds {
		distance[i] = d.CompetitionDistance
		months[i] = float64(d.CompetitionTimeMonth)
		weeks[i] = float64(d.PromoTimeWeek)
		years[i] = float64(d.Year)
	}

	return []featurestate.ScalerDoc{
		robustScaler(pipeline.ColCompetitionDistance, distance),
		robustScaler(pipeline.ColCompetitionTimeMonth, months),
		minmaxScaler(pipeline.ColPromoTimeWeek, weeks),
		minmaxScaler(pipeline.ColYear, years,
			pipeline.ColCompetitionOpenSinceYear, pipeline.ColPromo2SinceYear),
	}
}

// robustScaler measures the empirical median and interquartile range. A
// zero range falls back to unit scale so constant columns stay encodable
func robustScaler(column string, xs []float64) featurestate.ScalerDoc {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) -
		stat.Quantile(0.25, stat.Empirical, sorted, nil)
	if iqr == 0 {
		iqr = 1
	}
	return featurestate.ScalerDoc{Column: column, Kind: "robust", Median: median, IQR: iqr}
}

// minmaxScaler measures the observed range, with the same unit-scale
// fallback for constant columns. appliesTo names further columns rescaled
// with these statistics
func minmaxScaler(column string, xs []float64, appliesTo ...string) featurestate.ScalerDoc {
	lo, hi := floats.Min(xs), floats.Max(xs)
	if hi == lo {
		hi = lo + 1
	}
	return featurestate.ScalerDoc{
		Column: column, Kind: "minmax", Min: lo, Max: hi, AppliesTo: appliesTo,
	}
}

// fitVocab codes store types in lexical order
func fitVocab(ds []pipeline.Derived) map[string]int {
	seen := make(map[string]struct{})
	for _, d := range ds {
		seen[d.StoreType] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	vocab := make(map[string]int, len(values))
	for i, v := range values {
		vocab[v] = i
	}
	return vocab
}

// assortmentRanks is the fixed basic < extra < extended ordering
func assortmentRanks() map[string]int {
	return map[string]int{"basic": 1, "extra": 2, "extended": 3}
}

// fitUniverse collects every state holiday label the corpus contains
func fitUniverse(ds []pipeline.Derived) []string {
	seen := make(map[string]struct{})
	for _, d := range ds {
		seen[d.StateHoliday] = struct{}{}
	}
	universe := make([]string, 0, len(seen))
	for v := range seen {
		universe = append(universe, v)
	}
	sort.Strings(universe)
	return universe
}

func corpusMeta(ds []pipeline.Derived) map[string]any {
	stores := make(map[int64]struct{})
	from, to := ds[0].Date, ds[0].Date
	for _, d := range ds {
		stores[d.Store] = struct{}{}
		if d.Date.Before(from) {
			from = d.Date
		}
		if d.Date.After(to) {
			to = d.Date
		}
	}
	return map[string]any{
		"rows":   len(ds),
		"stores": len(stores),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
}
