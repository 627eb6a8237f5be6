// Package pipeline implements the transformation flow that turns raw store
// and calendar rows into model-ready feature vectors and scored sales
// forecasts.
//
// The flow is staged: Normalize maps loose input onto canonical typed
// records, Resolve fills missing values under the fitted policy, Derive
// computes calendar and elapsed-time attributes, Encode applies fitted
// scalers and encodings, SelectFeatures projects onto the fitted feature
// list, and the scorer inverts the log transform into currency units.
// Every parameter comes from the fitted state; nothing is refit per batch,
// so a vector produced here matches what the same row produced at training
// time
package pipeline

import (
	"storecast/internal/core/featurestate"
	perr "storecast/internal/platform/errors"
)

// Options tunes pipeline behavior
type Options struct {
	// MaxBatch caps rows accepted per call. Zero means no cap
	MaxBatch int
}

// Pipeline binds one fitted state to one scorer. Construction verifies the
// pair is compatible; a built Pipeline is immutable and safe for concurrent
// use
type Pipeline struct {
	state *featurestate.State
	model Scorer
	opts  Options
}

// New builds a pipeline with default options
func New(st *featurestate.State, m Scorer) (*Pipeline, error) {
	return NewWithOptions(st, m, Options{})
}

// NewWithOptions builds a pipeline and fails fast when the state and model
// cannot work together: a state selecting columns the encoder cannot
// produce, or a model expecting a different vector width, is rejected here
// rather than at first request
func NewWithOptions(st *featurestate.State, m Scorer, opts Options) (*Pipeline, error) {
	if st == nil {
		return nil, perr.IncompatibleStatef("nil feature state")
	}
	if m == nil {
		return nil, perr.IncompatibleStatef("nil scorer")
	}
	if err := ValidateSelection(st); err != nil {
		return nil, err
	}
	if got := m.Features(); got != len(st.Selected) {
		return nil, perr.IncompatibleStatef("model expects %d features, state selects %d",
			got, len(st.Selected))
	}

	return &Pipeline{state: st, model: m, opts: opts}, nil
}

// ValidateSelection checks that every selected feature is one the encoder
// can produce for this state. Fit runs it before writing an artifact so a
// bad plan fails at fit time, not at serving startup
func ValidateSelection(st *featurestate.State) error {
	producible := make(map[string]struct{})
	for _, col := range columnLayout(st) {
		producible[col] = struct{}{}
	}
	for _, sel := range st.Selected {
		if _, ok := producible[sel]; !ok {
			return perr.WithField(
				perr.IncompatibleStatef("state selects %q which the encoder cannot produce", sel), sel)
		}
	}
	return nil
}

// State exposes the fitted state the pipeline was built with
func (p *Pipeline) State() *featurestate.State { return p.state }

// Scorer exposes the bound scorer for introspection endpoints
func (p *Pipeline) Scorer() Scorer { return p.model }

// Run transforms and scores a batch. Closed stores are dropped before
// scoring, so the result can be shorter than the input; row order is
// otherwise preserved. Any row failing normalization or encoding fails the
// whole batch
func (p *Pipeline) Run(rows []Row) ([]Prediction, error) {
	frame, err := p.Transform(rows)
	if err != nil {
		return nil, err
	}
	vectors, err := SelectFeatures(p.state.Selected, frame)
	if err != nil {
		return nil, err
	}
	return score(p.model, frame.Keys, vectors)
}

// Transform runs every stage up to and including encoding, returning the
// full frame. Training and diagnostics read the frame directly; Run
// projects and scores it
func (p *Pipeline) Transform(rows []Row) (*Frame, error) {
	if p.opts.MaxBatch > 0 && len(rows) > p.opts.MaxBatch {
		return nil, perr.Schemaf("batch of %d rows exceeds limit of %d", len(rows), p.opts.MaxBatch)
	}

	recs, err := Normalize(rows)
	if err != nil {
		return nil, err
	}
	open := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if rec.Open {
			open = append(open, rec)
		}
	}
	return Encode(p.state, Derive(Resolve(open)))
}
