// Package model loads the trained regression model artifact and scores
// feature vectors. The artifact is a gradient-boosted tree dump exported by
// the training pipeline; inference here must stay dependency-free and cheap
package model

import (
	"encoding/json"
	"math"

	perr "storecast/internal/platform/errors"
)

// Version is the model document version this build reads
const Version = 1

// node is one split or leaf in a tree. Children are node indices within the
// same tree; Missing routes NaN inputs (xgboost default-direction semantics)
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Missing   int     `json:"missing"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

type document struct {
	Version     int     `json:"version"`
	Kind        string  `json:"kind"`
	NumFeatures int     `json:"num_features"`
	BaseScore   float64 `json:"base_score"`
	Trees       []tree  `json:"trees"`
}

// Ensemble is the loaded model, immutable after Parse
type Ensemble struct {
	kind        string
	numFeatures int
	baseScore   float64
	trees       []tree
}

// Kind returns the artifact kind tag (currently always "gbtree")
func (e *Ensemble) Kind() string { return e.kind }

// Features returns the feature vector width the model expects
func (e *Ensemble) Features() int { return e.numFeatures }

// Trees returns the ensemble size
func (e *Ensemble) Trees() int { return len(e.trees) }

// Parse decodes and validates a serialized model document
func Parse(data []byte) (*Ensemble, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIncompatibleState, "model: parse document")
	}
	if doc.Version != Version {
		return nil, perr.IncompatibleStatef(
			"model: unsupported document version %d (want %d)", doc.Version, Version)
	}
	if doc.Kind != "gbtree" {
		return nil, perr.IncompatibleStatef("model: unsupported kind %q", doc.Kind)
	}
	if doc.NumFeatures <= 0 {
		return nil, perr.IncompatibleStatef("model: num_features %d", doc.NumFeatures)
	}
	if len(doc.Trees) == 0 {
		return nil, perr.IncompatibleStatef("model: no trees")
	}
	for ti, tr := range doc.Trees {
		if len(tr.Nodes) == 0 {
			return nil, perr.IncompatibleStatef("model: tree %d has no nodes", ti)
		}
		for ni, n := range tr.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= doc.NumFeatures {
				return nil, perr.IncompatibleStatef(
					"model: tree %d node %d splits on feature %d (width %d)",
					ti, ni, n.Feature, doc.NumFeatures)
			}
			// children must point forward: guarantees traversal terminates
			for _, child := range []int{n.Left, n.Right, n.Missing} {
				if child <= ni || child >= len(tr.Nodes) {
					return nil, perr.IncompatibleStatef(
						"model: tree %d node %d child index %d out of range", ti, ni, child)
				}
			}
		}
	}
	return &Ensemble{
		kind:        doc.Kind,
		numFeatures: doc.NumFeatures,
		baseScore:   doc.BaseScore,
		trees:       doc.Trees,
	}, nil
}

// Predict scores one feature vector, returning the raw model output
// (the training target scale, not sales units)
func (e *Ensemble) Predict(features []float64) (float64, error) {
	if len(features) != e.numFeatures {
		return 0, perr.Scoringf(
			"model: feature vector width %d, want %d", len(features), e.numFeatures)
	}
	sum := e.baseScore
	for ti := range e.trees {
		nodes := e.trees[ti].Nodes
		i := 0
		for !nodes[i].Leaf {
			n := &nodes[i]
			v := features[n.Feature]
			switch {
			case math.IsNaN(v):
				i = n.Missing
			case v < n.Threshold:
				i = n.Left
			default:
				i = n.Right
			}
		}
		sum += nodes[i].Value
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, perr.Scoringf("model: non-finite score")
	}
	return sum, nil
}
