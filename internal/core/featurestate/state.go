// Package featurestate loads and compiles the fitted transform state artifact.
// The document is produced once at fit time and applied read-only at serving
// time; compiling up front keeps the per-request path allocation-free
package featurestate

import (
	"encoding/json"
	"sort"
	"time"

	perr "storecast/internal/platform/errors"
)

// Version is the document version this build reads and writes
const Version = 1

// ScalerDoc is the serialized form of one fitted rescaler.
// Robust scalers persist median/iqr, minmax scalers persist min/max;
// both compile down to (x - location) / scale
type ScalerDoc struct {
	Column    string   `json:"column"`
	Kind      string   `json:"kind"` // "robust" | "minmax"
	Median    float64  `json:"median,omitempty"`
	IQR       float64  `json:"iqr,omitempty"`
	Min       float64  `json:"min,omitempty"`
	Max       float64  `json:"max,omitempty"`
	AppliesTo []string `json:"applies_to,omitempty"` // extra columns rescaled with the same stats
}

// Document is the serialized artifact: everything the fit learned,
// nothing the code can derive on its own
type Document struct {
	Version    int                       `json:"version"`
	TrainedAt  time.Time                 `json:"trained_at"`
	Meta       map[string]any            `json:"meta,omitempty"`
	Scalers    []ScalerDoc               `json:"scalers"`
	Vocabs     map[string]map[string]int `json:"vocabs"`
	Ordinals   map[string]map[string]int `json:"ordinals"`
	Indicators map[string][]string       `json:"indicators"`
	Selected   []string                  `json:"selected"`
}

// ScalerKind discriminates compiled rescalers
type ScalerKind uint8

// Scaler kinds
const (
	ScalerRobust ScalerKind = iota + 1
	ScalerMinMax
)

// Scaler is a compiled rescaler for one column
type Scaler struct {
	Column   string
	Kind     ScalerKind
	Location float64
	Scale    float64
}

// Apply rescales a single value with the persisted statistics
func (s Scaler) Apply(v float64) float64 { return (v - s.Location) / s.Scale }

// Vocab maps a category label to its fitted integer code
type Vocab map[string]int

// Ranks maps an ordered category label to its fitted rank
type Ranks map[string]int

// State is the compiled artifact shared read-only across requests
type State struct {
	Version   int
	TrainedAt time.Time
	Meta      map[string]any

	// Scalers by column; applies_to entries are expanded so every
	// rescaled column has a direct lookup
	Scalers map[string]Scaler

	Vocabs   map[string]Vocab
	Ordinals map[string]Ranks

	// Indicators holds the fitted category universe per indicator field,
	// sorted so output column order never depends on batch content
	Indicators map[string][]string

	// Selected is the ordered feature list the model was trained on
	Selected []string
}

// Code resolves a categorical value through the fitted vocabulary.
// Values never seen at fit time are rejected, not guessed
func (s *State) Code(field, value string) (int, error) {
	v, ok := s.Vocabs[field]
	if !ok {
		return 0, perr.FeatureMismatchf("state: no vocabulary for field %q", field)
	}
	code, ok := v[value]
	if !ok {
		return 0, perr.WithField(
			perr.UnknownCategoryf("state: %q not in fitted vocabulary for %q", value, field), field)
	}
	return code, nil
}

// Rank resolves an ordered categorical value through the fitted rank table
func (s *State) Rank(field, value string) (int, error) {
	r, ok := s.Ordinals[field]
	if !ok {
		return 0, perr.FeatureMismatchf("state: no rank table for field %q", field)
	}
	rank, ok := r[value]
	if !ok {
		return 0, perr.WithField(
			perr.UnknownCategoryf("state: %q not in fitted rank table for %q", value, field), field)
	}
	return rank, nil
}

// Universe returns the fitted indicator categories for a field, sorted
func (s *State) Universe(field string) ([]string, error) {
	u, ok := s.Indicators[field]
	if !ok {
		return nil, perr.FeatureMismatchf("state: no indicator universe for field %q", field)
	}
	return u, nil
}

// Parse decodes and compiles a serialized state document
func Parse(data []byte) (*State, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIncompatibleState, "state: parse document")
	}
	return Compile(&doc)
}

// Compile validates a document and builds the shared read-only State
func Compile(doc *Document) (*State, error) {
	if doc.Version != Version {
		return nil, perr.IncompatibleStatef(
			"state: unsupported document version %d (want %d)", doc.Version, Version)
	}
	if len(doc.Selected) == 0 {
		return nil, perr.IncompatibleStatef("state: empty selected feature list")
	}

	st := &State{
		Version:    doc.Version,
		TrainedAt:  doc.TrainedAt,
		Meta:       doc.Meta,
		Scalers:    make(map[string]Scaler, len(doc.Scalers)*2),
		Vocabs:     make(map[string]Vocab, len(doc.Vocabs)),
		Ordinals:   make(map[string]Ranks, len(doc.Ordinals)),
		Indicators: make(map[string][]string, len(doc.Indicators)),
	}

	for _, sd := range doc.Scalers {
		sc, err := compileScaler(sd)
		if err != nil {
			return nil, err
		}
		if _, dup := st.Scalers[sd.Column]; dup {
			return nil, perr.IncompatibleStatef("state: duplicate scaler for column %q", sd.Column)
		}
		st.Scalers[sd.Column] = sc
		for _, extra := range sd.AppliesTo {
			if _, dup := st.Scalers[extra]; dup {
				return nil, perr.IncompatibleStatef("state: duplicate scaler for column %q", extra)
			}
			alias := sc
			alias.Column = extra
			st.Scalers[extra] = alias
		}
	}

	for field, m := range doc.Vocabs {
		if len(m) == 0 {
			return nil, perr.IncompatibleStatef("state: empty vocabulary for field %q", field)
		}
		v := make(Vocab, len(m))
		for k, code := range m {
			v[k] = code
		}
		st.Vocabs[field] = v
	}

	for field, m := range doc.Ordinals {
		if len(m) == 0 {
			return nil, perr.IncompatibleStatef("state: empty rank table for field %q", field)
		}
		r := make(Ranks, len(m))
		for k, rank := range m {
			r[k] = rank
		}
		st.Ordinals[field] = r
	}

	// Copy and sort so indicator column order is stable regardless of
	// how the document listed the categories
	for field, cats := range doc.Indicators {
		if len(cats) == 0 {
			return nil, perr.IncompatibleStatef("state: empty indicator universe for field %q", field)
		}
		u := make([]string, len(cats))
		copy(u, cats)
		sort.Strings(u)
		st.Indicators[field] = u
	}

	seen := make(map[string]struct{}, len(doc.Selected))
	st.Selected = make([]string, len(doc.Selected))
	for i, name := range doc.Selected {
		if _, dup := seen[name]; dup {
			return nil, perr.IncompatibleStatef("state: duplicate selected feature %q", name)
		}
		seen[name] = struct{}{}
		st.Selected[i] = name
	}

	return st, nil
}

func compileScaler(sd ScalerDoc) (Scaler, error) {
	switch sd.Kind {
	case "robust":
		if sd.IQR <= 0 {
			return Scaler{}, perr.IncompatibleStatef(
				"state: robust scaler for %q needs iqr > 0, got %v", sd.Column, sd.IQR)
		}
		return Scaler{Column: sd.Column, Kind: ScalerRobust, Location: sd.Median, Scale: sd.IQR}, nil
	case "minmax":
		if sd.Max <= sd.Min {
			return Scaler{}, perr.IncompatibleStatef(
				"state: minmax scaler for %q needs max > min, got [%v, %v]", sd.Column, sd.Min, sd.Max)
		}
		return Scaler{Column: sd.Column, Kind: ScalerMinMax, Location: sd.Min, Scale: sd.Max - sd.Min}, nil
	default:
		return Scaler{}, perr.IncompatibleStatef(
			"state: unknown scaler kind %q for column %q", sd.Kind, sd.Column)
	}
}
