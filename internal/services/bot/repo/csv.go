package repo

import (
	"context"
	"sync"

	"storecast/internal/adapters/dataset"
	perr "storecast/internal/platform/errors"
	"storecast/internal/services/bot/domain"
)

// CSV serves horizons straight from the scoring dataset files, for
// running the bot without a seeded database. Files load once on first
// use and stay resident; the horizon corpus is small
type CSV struct {
	schedulePath string
	storePath    string

	once    sync.Once
	byStore map[int64][]domain.RawRow
	loadErr error
}

// NewCSV creates a horizon source over a schedule csv and a store
// metadata csv, both optionally gzipped
func NewCSV(schedulePath, storePath string) *CSV {
	return &CSV{schedulePath: schedulePath, storePath: storePath}
}

func (c *CSV) load() {
	rows, err := dataset.ReadMerged(c.schedulePath, c.storePath)
	if err != nil {
		c.loadErr = err
		return
	}
	c.byStore = make(map[int64][]domain.RawRow, 1200)
	for _, row := range rows {
		id, ok := dataset.StoreID(row)
		if !ok {
			continue
		}
		c.byStore[id] = append(c.byStore[id], row)
	}
}

// RowsForStore returns the dataset rows for one store in file order
func (c *CSV) RowsForStore(_ context.Context, store int64) ([]domain.RawRow, error) {
	c.once.Do(c.load)
	if c.loadErr != nil {
		return nil, perr.Unavailablef("horizon dataset unavailable: %v", c.loadErr)
	}
	rows, ok := c.byStore[store]
	if !ok {
		return nil, perr.NotFoundf("store %d not in horizon dataset", store)
	}
	return rows, nil
}
