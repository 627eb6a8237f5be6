// Package ingest adapts the dataset reader into the seed domain
package ingest

import (
	"storecast/internal/adapters/dataset"
	"storecast/internal/services/seed/domain"
)

// source adapts dataset.ReadMerged to domain.Source
type source struct{}

// NewSource returns a Source backed by the CSV dataset reader
func NewSource() domain.Source { return source{} }

func (source) Rows(schedulePath, storePath string) ([]domain.RawRow, error) {
	return dataset.ReadMerged(schedulePath, storePath)
}
