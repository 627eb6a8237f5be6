package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "storecast/internal/platform/errors"
)

// Row is one raw input record. Keys are matched case-insensitively and
// ignoring separators, so "StateHoliday", "state_holiday" and "state-holiday"
// all address the same column. Unrecognized keys are dropped
type Row map[string]any

// Record is a normalized row: canonical names, typed values, calendar date.
// Pointer fields distinguish absent from zero-valued
type Record struct {
	Store         int64
	Date          time.Time
	DayOfWeek     int // 1=Monday .. 7=Sunday
	Open          bool
	Promo         bool
	StateHoliday  string // public | easter | christmas | none
	SchoolHoliday bool
	StoreType     string
	Assortment    string // basic | extra | extended

	CompetitionDistance       *float64
	CompetitionOpenSinceMonth *int
	CompetitionOpenSinceYear  *int

	Promo2          bool
	Promo2SinceWeek *int
	Promo2SinceYear *int
	PromoInterval   string // "" when the store runs no extended promotion

	Sales    *float64 // present in training corpora only
	HasOpen  bool
	HasSales bool
}

// schemaf builds a schema rejection tagged with the offending column
func schemaf(col, format string, a ...any) error {
	return perr.WithField(perr.Schemaf(format, a...), col)
}

// Normalize maps raw rows onto canonical records. It rejects rows missing a
// required column, values that do not coerce to the column type, and
// duplicate (store, date) pairs within the batch
func Normalize(rows []Row) ([]Record, error) {
	recs := make([]Record, 0, len(rows))
	seen := make(map[[2]int64]struct{}, len(rows))

	for i, row := range rows {
		rec, err := normalizeRow(row)
		if err != nil {
			return nil, perr.Wrapf(err, perr.CodeOf(err), "row %d", i)
		}
		key := [2]int64{rec.Store, rec.Date.Unix()}
		if _, dup := seen[key]; dup {
			return nil, schemaf(ColStore, "row %d: duplicate store %d on %s in batch",
				i, rec.Store, rec.Date.Format("2006-01-02"))
		}
		seen[key] = struct{}{}
		recs = append(recs, rec)
	}
	return recs, nil
}

func normalizeRow(row Row) (Record, error) {
	vals := make(map[string]any, len(row))
	for k, v := range row {
		if canon, ok := canonColumn(k); ok {
			vals[canon] = v
		}
	}

	var rec Record
	var err error

	if rec.Store, err = requireInt(vals, ColStore); err != nil {
		return rec, err
	}
	if rec.Date, err = requireDate(vals, ColDate); err != nil {
		return rec, err
	}
	if rec.StoreType, err = requireCategory(vals, ColStoreType); err != nil {
		return rec, err
	}
	if rec.Assortment, err = requireCategory(vals, ColAssortment); err != nil {
		return rec, err
	}
	rec.Assortment = canonAssortment(rec.Assortment)

	if rec.DayOfWeek, err = optInt(vals, ColDayOfWeek, isoWeekday(rec.Date)); err != nil {
		return rec, err
	}
	if rec.DayOfWeek < 1 || rec.DayOfWeek > 7 {
		return rec, schemaf(ColDayOfWeek, "day_of_week %d outside 1..7", rec.DayOfWeek)
	}

	if v, ok := vals[ColOpen]; ok {
		rec.HasOpen = true
		if rec.Open, err = asBool(ColOpen, v); err != nil {
			return rec, err
		}
	} else {
		rec.Open = true
	}
	if rec.Promo, err = optBool(vals, ColPromo); err != nil {
		return rec, err
	}
	if rec.SchoolHoliday, err = optBool(vals, ColSchoolHoliday); err != nil {
		return rec, err
	}
	if rec.Promo2, err = optBool(vals, ColPromo2); err != nil {
		return rec, err
	}

	hol, err := optString(vals, ColStateHoliday, "none")
	if err != nil {
		return rec, err
	}
	rec.StateHoliday = canonStateHoliday(hol)

	if rec.CompetitionDistance, err = optFloatPtr(vals, ColCompetitionDistance); err != nil {
		return rec, err
	}
	if rec.CompetitionOpenSinceMonth, err = optIntPtr(vals, ColCompetitionOpenSinceMonth); err != nil {
		return rec, err
	}
	if rec.CompetitionOpenSinceYear, err = optIntPtr(vals, ColCompetitionOpenSinceYear); err != nil {
		return rec, err
	}
	if rec.Promo2SinceWeek, err = optIntPtr(vals, ColPromo2SinceWeek); err != nil {
		return rec, err
	}
	if rec.Promo2SinceYear, err = optIntPtr(vals, ColPromo2SinceYear); err != nil {
		return rec, err
	}
	if rec.PromoInterval, err = optString(vals, ColPromoInterval, ""); err != nil {
		return rec, err
	}

	if v, ok := vals[ColSales]; ok && !isEmpty(v) {
		f, ferr := asFloat(ColSales, v)
		if ferr != nil {
			return rec, ferr
		}
		rec.Sales = &f
		rec.HasSales = true
	}
	return rec, nil
}

// canonColumn resolves a raw header to its canonical name. Matching folds
// case and strips "_", "-" and spaces
func canonColumn(raw string) (string, bool) {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(raw)))
	canon, ok := headerAliases[folded]
	return canon, ok
}

var headerAliases = map[string]string{
	"store":                     ColStore,
	"storeid":                   ColStore,
	"date":                      ColDate,
	"dayofweek":                 ColDayOfWeek,
	"open":                      ColOpen,
	"promo":                     ColPromo,
	"stateholiday":              ColStateHoliday,
	"schoolholiday":             ColSchoolHoliday,
	"storetype":                 ColStoreType,
	"assortment":                ColAssortment,
	"competitiondistance":       ColCompetitionDistance,
	"competitionopensincemonth": ColCompetitionOpenSinceMonth,
	"competitionopensinceyear":  ColCompetitionOpenSinceYear,
	"promo2":                    ColPromo2,
	"promo2sinceweek":           ColPromo2SinceWeek,
	"promo2sinceyear":           ColPromo2SinceYear,
	"promointerval":             ColPromoInterval,
	"sales":                     ColSales,
}

// canonStateHoliday maps the raw single-letter coding onto readable labels.
// Already-canonical labels pass through; anything else is left for the
// encoder to reject against the fitted universe
func canonStateHoliday(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "a":
		return "public"
	case "b":
		return "easter"
	case "c":
		return "christmas"
	case "", "0", "none":
		return "none"
	default:
		return strings.ToLower(strings.TrimSpace(v))
	}
}

func canonAssortment(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "a":
		return "basic"
	case "b":
		return "extra"
	case "c":
		return "extended"
	default:
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// isoWeekday returns the 1=Monday .. 7=Sunday weekday number
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

func requireInt(vals map[string]any, col string) (int64, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return 0, schemaf(col, "missing required column %q", col)
	}
	return asInt(col, v)
}

func requireDate(vals map[string]any, col string) (time.Time, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return time.Time{}, schemaf(col, "missing required column %q", col)
	}
	return asDate(col, v)
}

func requireCategory(vals map[string]any, col string) (string, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return "", schemaf(col, "missing required column %q", col)
	}
	s, err := asString(col, v)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

func optInt(vals map[string]any, col string, def int) (int, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return def, nil
	}
	n, err := asInt(col, v)
	return int(n), err
}

func optBool(vals map[string]any, col string) (bool, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return false, nil
	}
	return asBool(col, v)
}

func optString(vals map[string]any, col, def string) (string, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return def, nil
	}
	return asString(col, v)
}

func optFloatPtr(vals map[string]any, col string) (*float64, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return nil, nil
	}
	f, err := asFloat(col, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optIntPtr(vals map[string]any, col string) (*int, error) {
	v, ok := vals[col]
	if !ok || isEmpty(v) {
		return nil, nil
	}
	n, err := asInt(col, v)
	if err != nil {
		return nil, err
	}
	i := int(n)
	return &i, nil
}

// isEmpty reports whether a cell should count as absent. CSV sources hand us
// "" and "NaN" strings; JSON sources hand us nil
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null")
	}
	return false
}

func asInt(col string, v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != float64(int64(t)) {
			return 0, schemaf(col, "column %q: %v is not an integer", col, t)
		}
		return int64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		// CSV exports often carry integer columns as "5.0"
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f), nil
		}
	}
	return 0, schemaf(col, "column %q: cannot read %v (%T) as integer", col, v, v)
}

func asFloat(col string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, nil
		}
	}
	return 0, schemaf(col, "column %q: cannot read %v (%T) as number", col, v, v)
}

func asBool(col string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	case int64:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	case float64:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "t", "yes":
			return true, nil
		case "0", "false", "f", "no":
			return false, nil
		}
	}
	return false, schemaf(col, "column %q: cannot read %v (%T) as flag", col, v, v)
}

func asString(col string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case int, int64, float64:
		return fmt.Sprintf("%v", t), nil
	}
	return "", schemaf(col, "column %q: cannot read %T as text", col, v)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2/1/2006",
	"02.01.2006",
}

// asDate parses a calendar date and truncates it to UTC midnight
func asDate(col string, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return midnight(t), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return midnight(ts), nil
			}
		}
	}
	return time.Time{}, schemaf(col, "column %q: cannot read %v (%T) as date", col, v, v)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
