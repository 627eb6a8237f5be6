// Package module wires the seed loader
package module

import (
	"context"

	"storecast/internal/modkit"
	"storecast/internal/modkit/repokit"
	phttp "storecast/internal/platform/net/http"
	"storecast/internal/services/seed/domain"
	"storecast/internal/services/seed/ingest"
	"storecast/internal/services/seed/repo"
	"storecast/internal/services/seed/service"
)

// Ports defines the seed module ports
type Ports struct {
	Loader domain.LoaderPort
}

// Module implements the seed module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the seed module. It wires the dataset source and the
// Postgres repo using config from deps.Cfg; it mounts no routes
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	db := deps.PG
	if db != nil && !opts.SyncCommit {
		// bulk upserts do not need a WAL flush per chunk
		db = repokit.WithBeginHooks(db, relaxCommit)
	}

	svc := service.New(
		db, repo.NewPG(), ingest.NewSource(),
		service.Config{
			Workers:    opts.Workers,
			ChunkSize:  opts.ChunkSize,
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Loader: svc}
	return m
}

// relaxCommit turns off synchronous_commit for the enclosing transaction only
func relaxCommit(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `set local synchronous_commit to 'off'`)
	return err
}

// Name returns the module name
func (m *Module) Name() string { return "seed" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as seed has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
