package dataset

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storecast/internal/core/pipeline"
)

// StoreAttrs holds per-store metadata rows keyed by store id
type StoreAttrs map[int64]pipeline.Row

// LoadStoreAttrs reads a store-metadata CSV into a lookup table.
// Store ids must be unique within the file
func LoadStoreAttrs(path string) (StoreAttrs, error) {
	rd, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	attrs := make(StoreAttrs)
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		id, ok := StoreID(row)
		if !ok {
			return nil, fmt.Errorf("dataset: store row %d has no usable store id", rd.Rows())
		}
		if _, dup := attrs[id]; dup {
			return nil, fmt.Errorf("dataset: duplicate store %d in %s", id, path)
		}
		attrs[id] = row
	}
	return attrs, nil
}

// Merge left-joins row with the metadata for its store id. Row values win
// on key collisions; rows without a match pass through unchanged
func (a StoreAttrs) Merge(row pipeline.Row) pipeline.Row {
	id, ok := StoreID(row)
	if !ok {
		return row
	}
	meta, ok := a[id]
	if !ok {
		return row
	}
	out := make(pipeline.Row, len(row)+len(meta))
	for k, v := range meta {
		out[k] = v
	}
	for k, v := range row {
		out[k] = v
	}
	return out
}

// ReadMerged loads a data CSV and left-joins the store-metadata CSV on
// store id, returning the merged raw rows in file order
func ReadMerged(dataPath, storePath string) ([]pipeline.Row, error) {
	attrs, err := LoadStoreAttrs(storePath)
	if err != nil {
		return nil, err
	}
	rd, err := Open(dataPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	var rows []pipeline.Row
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, attrs.Merge(row))
	}
	return rows, nil
}

// StoreID extracts the store identifier from a raw row, folding header
// spellings the way the normalizer does
func StoreID(row pipeline.Row) (int64, bool) {
	var v any
	var found bool
	for k, cell := range row {
		switch foldKey(k) {
		case "store":
			v, found = cell, true
		case "storeid":
			if !found {
				v, found = cell, true
			}
		}
	}
	if !found {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// foldKey lowercases and strips separators so Store, store_id and StoreId
// all land on the same lookup key
func foldKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}
