package domain

import "context"

// LoaderPort is the public port exposed by the module (what the CLI calls)
type LoaderPort interface {
	Load(ctx context.Context, schedulePath, storePath string) (Summary, error)
}

// Source yields merged raw rows from the horizon corpora
type Source interface {
	Rows(schedulePath, storePath string) ([]RawRow, error)
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// UpsertStores writes store metadata; returns rows written
	UpsertStores(ctx context.Context, stores []Store) (int, error)

	// UpsertSchedule writes horizon days keyed by (store, date)
	UpsertSchedule(ctx context.Context, days []ScheduleDay) (int, error)
}
