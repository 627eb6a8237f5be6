package pipeline

import (
	"testing"
	"time"

	perr "storecast/internal/platform/errors"
)

func baseRow() Row {
	return Row{
		"Store":       42,
		"Date":       "2015-07-31",
		"StoreType":  "a",
		"Assortment": "c",
	}
}

func TestNormalizeHeaderAliases(t *testing.T) {
	rows := []Row{{
		"Store":               "42",
		"date":                "2015-07-31",
		"DayOfWeek":           "5",
		"Open":                "1",
		"Promo":               1,
		"StateHoliday":        "a",
		"school_holiday":      "0",
		"Store-Type":          "a",
		"Assortment":          "c",
		"CompetitionDistance": "1270.0",
		"Promo2":              0,
		"Ignored":             "whatever",
	}}
	recs, err := Normalize(rows)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	r := recs[0]
	if r.Store != 42 {
		t.Fatalf("Store = %d, want 42", r.Store)
	}
	if got := r.Date.Format("2006-01-02"); got != "2015-07-31" {
		t.Fatalf("Date = %s, want 2015-07-31", got)
	}
	if r.DayOfWeek != 5 {
		t.Fatalf("DayOfWeek = %d, want 5", r.DayOfWeek)
	}
	if !r.Open || !r.Promo || r.SchoolHoliday {
		t.Fatalf("flags = open %v promo %v school %v", r.Open, r.Promo, r.SchoolHoliday)
	}
	if r.StateHoliday != "public" {
		t.Fatalf("StateHoliday = %q, want public", r.StateHoliday)
	}
	if r.Assortment != "extended" {
		t.Fatalf("Assortment = %q, want extended", r.Assortment)
	}
	if r.CompetitionDistance == nil || *r.CompetitionDistance != 1270 {
		t.Fatalf("CompetitionDistance = %v, want 1270", r.CompetitionDistance)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	recs, err := Normalize([]Row{baseRow()})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	r := recs[0]

	// 2015-07-31 is a Friday
	if r.DayOfWeek != 5 {
		t.Fatalf("derived DayOfWeek = %d, want 5", r.DayOfWeek)
	}
	if !r.Open || r.HasOpen {
		t.Fatalf("absent open should default to open=true with HasOpen=false, got %v/%v",
			r.Open, r.HasOpen)
	}
	if r.Promo || r.Promo2 || r.SchoolHoliday {
		t.Fatal("absent flags should default to false")
	}
	if r.StateHoliday != "none" {
		t.Fatalf("StateHoliday = %q, want none", r.StateHoliday)
	}
	if r.CompetitionDistance != nil || r.Promo2SinceWeek != nil {
		t.Fatal("absent optionals should stay nil")
	}
	if r.PromoInterval != "" {
		t.Fatalf("PromoInterval = %q, want empty", r.PromoInterval)
	}
}

func TestNormalizeCategoryCodes(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{"a", "public"}, {"b", "easter"}, {"c", "christmas"},
		{"0", "none"}, {"", "none"}, {"none", "none"},
		{"Public", "public"}, // canonical form passes through
		{"z", "z"},           // unknown codes survive for the encoder to reject
	}
	for _, tc := range cases {
		row := baseRow()
		row["StateHoliday"] = tc.raw
		recs, err := Normalize([]Row{row})
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tc.raw, err)
		}
		if got := recs[0].StateHoliday; got != tc.want {
			t.Fatalf("StateHoliday %q = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeEmptyCells(t *testing.T) {
	row := baseRow()
	row["CompetitionDistance"] = "NaN"
	row["CompetitionOpenSinceMonth"] = ""
	row["Promo2SinceWeek"] = nil
	recs, err := Normalize([]Row{row})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	r := recs[0]
	if r.CompetitionDistance != nil || r.CompetitionOpenSinceMonth != nil || r.Promo2SinceWeek != nil {
		t.Fatal("empty cells should normalize to absent")
	}
}

func TestNormalizeSales(t *testing.T) {
	row := baseRow()
	row["Sales"] = "5263"
	recs, err := Normalize([]Row{row})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !recs[0].HasSales || recs[0].Sales == nil || *recs[0].Sales != 5263 {
		t.Fatalf("Sales = %v (has %v), want 5263", recs[0].Sales, recs[0].HasSales)
	}
}

func TestNormalizeDateLayouts(t *testing.T) {
	for _, raw := range []any{
		"2015-07-31",
		"2015-07-31T00:00:00Z",
		"31.07.2015",
		time.Date(2015, time.July, 31, 14, 30, 0, 0, time.UTC),
	} {
		row := baseRow()
		row["Date"] = raw
		recs, err := Normalize([]Row{row})
		if err != nil {
			t.Fatalf("Normalize(date %v): %v", raw, err)
		}
		want := time.Date(2015, time.July, 31, 0, 0, 0, 0, time.UTC)
		if !recs[0].Date.Equal(want) {
			t.Fatalf("Date %v = %v, want %v", raw, recs[0].Date, want)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	mutate := func(fn func(Row)) []Row {
		row := baseRow()
		fn(row)
		return []Row{row}
	}

	cases := []struct {
		name string
		rows []Row
	}{
		{"missing store", mutate(func(r Row) { delete(r, "Store") })},
		{"missing date", mutate(func(r Row) { delete(r, "Date") })},
		{"missing store type", mutate(func(r Row) { delete(r, "StoreType") })},
		{"missing assortment", mutate(func(r Row) { delete(r, "Assortment") })},
		{"unreadable date", mutate(func(r Row) { r["Date"] = "tomorrow" })},
		{"unreadable flag", mutate(func(r Row) { r["Open"] = "maybe" })},
		{"fractional store", mutate(func(r Row) { r["Store"] = 41.5 })},
		{"weekday out of range", mutate(func(r Row) { r["DayOfWeek"] = 9 })},
		{"duplicate store and date", []Row{baseRow(), baseRow()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.rows)
			if err == nil {
				t.Fatal("expected error")
			}
			if !perr.IsCode(err, perr.ErrorCodeSchema) {
				t.Fatalf("code = %v, want schema violation", perr.CodeOf(err))
			}
		})
	}
}

func TestResolvePolicy(t *testing.T) {
	dist := 310.0
	m, y := 9, 2012
	wk, wy := 14, 2011

	recs := []Record{
		{
			Store: 1, Date: day(2015, time.July, 31),
			CompetitionDistance:       &dist,
			CompetitionOpenSinceMonth: &m, CompetitionOpenSinceYear: &y,
			Promo2: true, Promo2SinceWeek: &wk, Promo2SinceYear: &wy,
			PromoInterval: "Jan,Apr,Jul,Oct",
		},
		{Store: 2, Date: day(2015, time.July, 31)},
	}
	rs := Resolve(recs)

	full := rs[0]
	if full.CompetitionDistance != 310 || !full.HasCompetitionSince || !full.HasPromo2Since {
		t.Fatalf("genuine values mangled: %+v", full)
	}

	bare := rs[1]
	if bare.CompetitionDistance != MissingCompetitionDistance {
		t.Fatalf("CompetitionDistance = %f, want %f", bare.CompetitionDistance, MissingCompetitionDistance)
	}
	if bare.HasCompetitionSince || bare.HasPromo2Since {
		t.Fatal("imputed anchors must not count as genuine")
	}
	if bare.CompetitionOpenSinceMonth != 7 || bare.CompetitionOpenSinceYear != 2015 {
		t.Fatalf("imputed competitor anchor = %d/%d, want record date parts 7/2015",
			bare.CompetitionOpenSinceMonth, bare.CompetitionOpenSinceYear)
	}
	wantY, wantW := day(2015, time.July, 31).ISOWeek()
	if bare.Promo2SinceYear != wantY || bare.Promo2SinceWeek != wantW {
		t.Fatalf("imputed promo anchor = %d/%d, want %d/%d",
			bare.Promo2SinceYear, bare.Promo2SinceWeek, wantY, wantW)
	}
	if bare.PromoInterval != "none" {
		t.Fatalf("PromoInterval = %q, want none", bare.PromoInterval)
	}
}
