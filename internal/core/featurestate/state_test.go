package featurestate

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	perr "storecast/internal/platform/errors"
)

func sampleDoc() *Document {
	return &Document{
		Version:   Version,
		TrainedAt: time.Date(2015, 7, 31, 0, 0, 0, 0, time.UTC),
		Meta:      map[string]any{"corpus_rows": float64(844338)},
		Scalers: []ScalerDoc{
			{Column: "competition_distance", Kind: "robust", Median: 2330, IQR: 4259},
			{Column: "competition_time_month", Kind: "robust", Median: 24, IQR: 48},
			{Column: "promo_time_week", Kind: "minmax", Min: 0, Max: 300},
			{
				Column: "year", Kind: "minmax", Min: 2013, Max: 2015,
				AppliesTo: []string{"promo2_since_year", "competition_open_since_year"},
			},
		},
		Vocabs: map[string]map[string]int{
			"store_type": {"a": 0, "b": 1, "c": 2, "d": 3},
		},
		Ordinals: map[string]map[string]int{
			"assortment": {"basic": 1, "extra": 2, "extended": 3},
		},
		Indicators: map[string][]string{
			"state_holiday": {"public", "easter", "christmas", "none"},
		},
		Selected: []string{
			"store", "promo", "store_type", "assortment",
			"competition_distance", "competition_open_since_month", "competition_open_since_year",
			"promo2", "promo2_since_week", "promo2_since_year",
			"competition_time_month", "promo_time_week",
			"day_of_week_sin", "day_of_week_cos", "month_sin", "month_cos",
			"day_sin", "day_cos", "week_of_year_sin", "week_of_year_cos",
		},
	}
}

func mustCompile(t *testing.T) *State {
	t.Helper()
	st, err := Compile(sampleDoc())
	if err != nil {
		t.Fatalf("Compile(): %v", err)
	}
	return st
}

func TestCompile(t *testing.T) {
	st := mustCompile(t)

	if st.Version != Version {
		t.Fatalf("version = %d, want %d", st.Version, Version)
	}

	// applies_to expansion: 4 documents, 6 compiled scalers
	if len(st.Scalers) != 6 {
		t.Fatalf("compiled scalers = %d, want 6", len(st.Scalers))
	}
	year := st.Scalers["year"]
	alias := st.Scalers["promo2_since_year"]
	if alias.Location != year.Location || alias.Scale != year.Scale {
		t.Fatalf("alias scaler stats differ from year: %+v vs %+v", alias, year)
	}
	if alias.Column != "promo2_since_year" {
		t.Fatalf("alias column = %q", alias.Column)
	}

	// robust: (x - median) / iqr
	rs := st.Scalers["competition_distance"]
	if got := rs.Apply(2330); got != 0 {
		t.Fatalf("robust Apply(median) = %v, want 0", got)
	}
	if got := rs.Apply(2330 + 4259); math.Abs(got-1) > 1e-12 {
		t.Fatalf("robust Apply(median+iqr) = %v, want 1", got)
	}

	// minmax: (x - min) / (max - min)
	mm := st.Scalers["year"]
	if got := mm.Apply(2013); got != 0 {
		t.Fatalf("minmax Apply(min) = %v, want 0", got)
	}
	if got := mm.Apply(2015); math.Abs(got-1) > 1e-12 {
		t.Fatalf("minmax Apply(max) = %v, want 1", got)
	}

	// indicator universe is sorted regardless of document order
	u, err := st.Universe("state_holiday")
	if err != nil {
		t.Fatalf("Universe: %v", err)
	}
	want := []string{"christmas", "easter", "none", "public"}
	for i := range want {
		if u[i] != want[i] {
			t.Fatalf("universe[%d] = %q, want %q", i, u[i], want[i])
		}
	}

	if len(st.Selected) != 20 {
		t.Fatalf("selected = %d, want 20", len(st.Selected))
	}
}

func TestLookups(t *testing.T) {
	st := mustCompile(t)

	code, err := st.Code("store_type", "c")
	if err != nil || code != 2 {
		t.Fatalf("Code(store_type, c) = %d, %v", code, err)
	}
	rank, err := st.Rank("assortment", "extended")
	if err != nil || rank != 3 {
		t.Fatalf("Rank(assortment, extended) = %d, %v", rank, err)
	}

	// a fifth store type was never fitted: reject, do not guess
	if _, err := st.Code("store_type", "e"); !perr.IsCode(err, perr.ErrorCodeUnknownCategory) {
		t.Fatalf("Code(unfitted) code = %v, want UnknownCategory", perr.CodeOf(err))
	}
	if _, err := st.Rank("assortment", "deluxe"); !perr.IsCode(err, perr.ErrorCodeUnknownCategory) {
		t.Fatalf("Rank(unfitted) code = %v, want UnknownCategory", perr.CodeOf(err))
	}

	// asking for a field the state never fitted is a wiring bug, not bad input
	if _, err := st.Code("region", "x"); !perr.IsCode(err, perr.ErrorCodeFeatureMismatch) {
		t.Fatalf("Code(no vocab) code = %v, want FeatureMismatch", perr.CodeOf(err))
	}
	if _, err := st.Universe("region"); !perr.IsCode(err, perr.ErrorCodeFeatureMismatch) {
		t.Fatalf("Universe(no field) code = %v, want FeatureMismatch", perr.CodeOf(err))
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw, err := json.Marshal(sampleDoc())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	st, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if st.TrainedAt.IsZero() {
		t.Fatalf("TrainedAt lost in round trip")
	}
	if _, ok := st.Scalers["competition_open_since_year"]; !ok {
		t.Fatalf("applies_to column missing after Parse")
	}

	if _, err := Parse([]byte("{nope")); !perr.IsCode(err, perr.ErrorCodeIncompatibleState) {
		t.Fatalf("Parse(garbage) code = %v, want IncompatibleState", perr.CodeOf(err))
	}
}

func TestCompileRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Document)
	}{
		{"version", func(d *Document) { d.Version = 99 }},
		{"empty selected", func(d *Document) { d.Selected = nil }},
		{"duplicate selected", func(d *Document) { d.Selected = append(d.Selected, "store") }},
		{"zero iqr", func(d *Document) { d.Scalers[0].IQR = 0 }},
		{"inverted minmax", func(d *Document) { d.Scalers[2].Min, d.Scalers[2].Max = 10, 10 }},
		{"unknown kind", func(d *Document) { d.Scalers[0].Kind = "zscore" }},
		{"duplicate column", func(d *Document) {
			d.Scalers = append(d.Scalers, ScalerDoc{Column: "year", Kind: "minmax", Min: 0, Max: 1})
		}},
		{"alias collision", func(d *Document) {
			d.Scalers[3].AppliesTo = append(d.Scalers[3].AppliesTo, "promo_time_week")
		}},
		{"empty vocab", func(d *Document) { d.Vocabs["store_type"] = map[string]int{} }},
		{"empty universe", func(d *Document) { d.Indicators["state_holiday"] = nil }},
	}
	for _, c := range cases {
		doc := sampleDoc()
		c.mutate(doc)
		_, err := Compile(doc)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !perr.IsCode(err, perr.ErrorCodeIncompatibleState) {
			t.Fatalf("%s: code = %v, want IncompatibleState", c.name, perr.CodeOf(err))
		}
	}
}
