// Command storecast-seed loads the horizon schedule and store metadata
// CSVs into Postgres for the bot's pg source
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"storecast/internal/modkit"
	"storecast/internal/modkit/module"
	"storecast/internal/modkit/repokit"
	"storecast/internal/platform/config"
	"storecast/internal/platform/logger"
	"storecast/internal/platform/store"

	seedmod "storecast/internal/services/seed/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	var (
		schedule = flag.String("schedule", "test.csv", "horizon schedule csv, .gz accepted")
		storeCSV = flag.String("store", "store.csv", "store metadata csv, .gz accepted")
		workers  = flag.Int("workers", 4, "schedule upsert concurrency (>=1)")
		chunk    = flag.Int("chunk", 500, "rows per upsert transaction")
		retries  = flag.Int("retries", 3, "attempts per chunk on retryable errors")
	)
	flag.Parse()

	if *schedule == "" || *storeCSV == "" {
		log.Fatal("schedule/store csv paths are required")
	}

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// A dead database should fail the run before any CSV parsing happens
	repokit.MustGuard(context.Background(), st)

	// Pass CLI flags into CORE_SEED_* so the module can read its own config
	mustSetEnv("CORE_SEED_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("CORE_SEED_CHUNK", strconv.Itoa(*chunk))
	mustSetEnv("CORE_SEED_RETRIES", strconv.Itoa(*retries))

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	sm := seedmod.New(deps)
	module.Register(sm.Name(), sm.Ports())

	ports, ok := module.PortsAs[seedmod.Ports](sm.Name())
	if !ok {
		l.Panic().Msg("seed ports not registered")
	}
	sum, err := ports.Loader.Load(context.Background(), *schedule, *storeCSV)
	if err != nil {
		l.Fatal().Err(err).Msg("seed failed")
	}
	l.Info().
		Int("rows", sum.RowsRead).
		Int("stores", sum.StoresWritten).
		Int("days", sum.DaysWritten).
		Dur("elapsed", sum.Elapsed).
		Msg("seed complete")
}
