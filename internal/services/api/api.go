// Package api provides the HTTP API for the application
package api

import (
	"storecast/internal/core/pipeline"
	"storecast/internal/platform/config"
	"storecast/internal/platform/logger"
	phttp "storecast/internal/platform/net/http"
	"storecast/internal/platform/store"

	"storecast/internal/modkit"
	"storecast/internal/modkit/httpkit"
	"storecast/internal/modkit/module"
	"storecast/internal/modkit/swaggerkit"

	forecastmod "storecast/internal/services/api/forecast/module"
	metamod "storecast/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	// Pipeline is the fitted state and model pair built at startup
	Pipeline *pipeline.Pipeline

	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	mods := []module.Module{
		metamod.New(deps),
		forecastmod.New(deps, opt.Pipeline),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
