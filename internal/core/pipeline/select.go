package pipeline

import (
	perr "storecast/internal/platform/errors"
)

// SelectFeatures projects the frame onto the fitted feature list, in fitted
// order. A selected column missing from the frame is a hard error, never a
// silent zero fill
func SelectFeatures(selected []string, f *Frame) ([][]float64, error) {
	cols := make([]int, len(selected))
	for i, name := range selected {
		idx, ok := f.Column(name)
		if !ok {
			return nil, perr.WithField(
				perr.FeatureMismatchf("selected feature %q not present in encoded frame", name), name)
		}
		cols[i] = idx
	}

	out := make([][]float64, len(f.Rows))
	for r, row := range f.Rows {
		vec := make([]float64, len(cols))
		for i, c := range cols {
			vec[i] = row[c]
		}
		out[r] = vec
	}
	return out, nil
}
