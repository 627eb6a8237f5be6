package pipeline

import (
	"math"
	"time"

	perr "storecast/internal/platform/errors"
)

// Scorer produces one model output per feature vector. The regressor is
// trained on log-transformed sales, so outputs live in log space until this
// stage inverts them
type Scorer interface {
	// Features is the vector width the scorer expects
	Features() int
	// Predict scores a single feature vector
	Predict(features []float64) (float64, error)
}

// Prediction is one scored row in currency units
type Prediction struct {
	Store int64     `json:"store"`
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
}

// score runs the model over each vector and inverts the log transform.
// Sales are floored at zero: the inverse transform can dip below it when
// the model emits strongly negative log values
func score(m Scorer, keys []RowKey, vectors [][]float64) ([]Prediction, error) {
	preds := make([]Prediction, 0, len(vectors))
	for i, vec := range vectors {
		raw, err := m.Predict(vec)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeScoring, "score store %d on %s",
				keys[i].Store, keys[i].Date.Format("2006-01-02"))
		}
		sales := math.Expm1(raw)
		if sales < 0 || math.IsNaN(sales) {
			sales = 0
		}
		preds = append(preds, Prediction{
			Store: keys[i].Store,
			Date:  keys[i].Date,
			Sales: sales,
		})
	}
	return preds, nil
}
