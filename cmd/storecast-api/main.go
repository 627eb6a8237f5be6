// @title         Storecast API
// @version       0.1.0
// @description   Sales forecast scoring and fitted-state endpoints

package main

import (
	"context"

	"storecast/internal/core/featurestate"
	"storecast/internal/core/model"
	"storecast/internal/core/pipeline"
	"storecast/internal/platform/blob"
	"storecast/internal/platform/config"
	"storecast/internal/platform/logger"
	phttp "storecast/internal/platform/net/http"
	"storecast/internal/platform/store"

	"storecast/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // audit sink lives under SERVICE_CLICKHOUSE_*
	// bring up logging early
	l := logger.Get()

	ctx := context.Background()

	// artifacts come before anything network facing; a process that
	// cannot score must not start serving
	pipe := buildPipeline(ctx, apiCfg)

	// the clickhouse audit sink is optional, predicts still serve without it
	var st *store.Store
	if chCfg.MayBool("ENABLED", true) {
		var err error
		st, err = store.Open(
			ctx,
			store.Config{
				CH: store.CHConfig{
					Enabled: true,
					URL:     chCfg.MustString("DBURL"),
				},
			},
			store.WithLogger(*logger.Get()),
		)
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	// http server (addr comes from CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			Pipeline:       pipe,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// buildPipeline fetches the fitted state and model artifacts and binds
// them, failing the process on any incompatibility
func buildPipeline(ctx context.Context, cfg config.Conf) *pipeline.Pipeline {
	l := logger.Get()

	stateURI := cfg.MustString("STATE_URI")
	modelURI := cfg.MustString("MODEL_URI")

	var opts []blob.Option
	if region := cfg.MayString("S3_REGION", ""); region != "" {
		opts = append(opts, blob.WithRegion(region))
	}
	if ep := cfg.MayString("S3_ENDPOINT", ""); ep != "" {
		opts = append(opts, blob.WithEndpoint(ep, cfg.MayBool("S3_PATH_STYLE", true)))
	}

	rawState, err := blob.Fetch(ctx, stateURI, opts...)
	if err != nil {
		l.Panic().Err(err).Str("uri", stateURI).Msg("fetch feature state failed")
	}
	st, err := featurestate.Parse(rawState)
	if err != nil {
		l.Panic().Err(err).Str("uri", stateURI).Msg("feature state rejected")
	}

	rawModel, err := blob.Fetch(ctx, modelURI, opts...)
	if err != nil {
		l.Panic().Err(err).Str("uri", modelURI).Msg("fetch model failed")
	}
	m, err := model.Parse(rawModel)
	if err != nil {
		l.Panic().Err(err).Str("uri", modelURI).Msg("model rejected")
	}

	pipe, err := pipeline.NewWithOptions(st, m, pipeline.Options{
		MaxBatch: cfg.MayInt("MAX_BATCH", 3000),
	})
	if err != nil {
		l.Panic().Err(err).Msg("state and model are incompatible")
	}

	l.Info().
		Time("trained_at", st.TrainedAt).
		Int("features", len(st.Selected)).
		Int("trees", m.Trees()).
		Msg("pipeline ready")
	return pipe
}
