// Command storecast-bot serves the Telegram webhook that answers
// /<store-id> commands with six week sales forecasts
package main

import (
	"context"

	"storecast/internal/modkit"
	"storecast/internal/modkit/httpkit"
	"storecast/internal/modkit/module"
	"storecast/internal/platform/config"
	"storecast/internal/platform/logger"
	phttp "storecast/internal/platform/net/http"
	"storecast/internal/platform/store"

	botmod "storecast/internal/services/bot/module"
)

func main() {
	// service-scoped config (CORE_BOT_*)
	root := config.New()
	botCfg := root.Prefix("CORE_BOT_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	deps := modkit.Deps{
		Cfg: botCfg,
		Log: *l,
	}

	// postgres only backs the pg horizon source; the csv source runs bare
	if botCfg.MayEnum("SOURCE", "pg", "pg", "csv") == "pg" {
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
		deps.PG = st.PG
	}

	// http server (reads CORE_BOT_PORT / CORE_BOT_ADDR)
	srv := phttp.NewServer(botCfg)

	bm := botmod.New(deps, modkit.WithMiddlewares(httpkit.CommonStack()...))
	module.Register(bm.Name(), bm.Ports())
	bm.MountRoutes(srv.Router())

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
