// Package dataset reads the headered CSV corpora (historical sales, store
// metadata, upcoming-horizon schedule) into raw rows for the pipeline.
//
// Design choices:
// - Stream row-by-row with encoding/csv; field-count mismatches surface as errors.
// - Keys are the file's own header names; the normalizer owns canonical folding
// - Empty and NA cells are dropped so per-field defaulting applies downstream.
// - Gzip is transparent by .gz suffix, matching how the archives are shipped
package dataset
