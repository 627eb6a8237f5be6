package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"storecast/internal/core/pipeline"
)

const gzipSuffix = ".gz"

// Reader streams raw rows from a headered CSV file
type Reader struct {
	src    io.ReadCloser
	gz     *gzip.Reader
	cr     *csv.Reader
	header []string
	rows   int
	err    error
}

// Open opens a CSV file for streaming, unwrapping gzip when the path ends in .gz
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	if strings.HasSuffix(path, gzipSuffix) {
		gz, gerr := gzip.NewReader(f)
		if gerr != nil {
			if cerr := f.Close(); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("dataset: gunzip %s: %w", path, gerr)
		}
		return newReader(f, gz)
	}
	return newReader(f, nil)
}

// New wraps an already-open plain CSV stream
func New(rc io.ReadCloser) (*Reader, error) {
	return newReader(rc, nil)
}

func newReader(src io.ReadCloser, gz *gzip.Reader) (*Reader, error) {
	var in io.Reader = src
	if gz != nil {
		in = gz
	}
	cr := csv.NewReader(in)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		rd := &Reader{src: src, gz: gz}
		if cerr := rd.Close(); cerr != nil {
			return nil, cerr
		}
		if err == io.EOF {
			return nil, fmt.Errorf("dataset: missing header row")
		}
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff") // BOM from spreadsheet exports
		}
		cols[i] = h
	}
	return &Reader{src: src, gz: gz, cr: cr, header: cols}, nil
}

// Header returns the column names from the file's first row
func (rd *Reader) Header() []string { return rd.header }

// Next returns the next data row keyed by raw header name; empty and NA
// cells are omitted. Returns io.EOF once the file is exhausted
func (rd *Reader) Next() (pipeline.Row, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	rec, err := rd.cr.Read()
	if err != nil {
		if err == io.EOF {
			rd.err = io.EOF
			return nil, io.EOF
		}
		rd.err = fmt.Errorf("dataset: %w", err)
		return nil, rd.err
	}
	row := make(pipeline.Row, len(rd.header))
	for i, cell := range rec {
		cell = strings.TrimSpace(cell)
		if missingCell(cell) {
			continue
		}
		row[rd.header[i]] = cell
	}
	rd.rows++
	return row, nil
}

// Rows returns the number of data rows read so far
func (rd *Reader) Rows() int { return rd.rows }

// Close closes the gzip layer and the underlying stream
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil {
			first = err
		}
	}
	if rd.src != nil {
		if err := rd.src.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// missingCell reports cell spellings the corpus uses for absent values
func missingCell(s string) bool {
	return s == "" || strings.EqualFold(s, "na")
}
