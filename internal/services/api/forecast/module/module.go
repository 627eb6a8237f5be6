// Package module wires forecasting into the API using modkit
package module

import (
	"net/http"

	"storecast/internal/core/pipeline"
	modkit "storecast/internal/modkit"
	"storecast/internal/modkit/httpkit"
	"storecast/internal/platform/net/middleware"
	str "storecast/internal/platform/strings"
	forecasthttp "storecast/internal/services/api/forecast/http"
	forecastrepo "storecast/internal/services/api/forecast/repo"
	forecastsvc "storecast/internal/services/api/forecast/service"
)

// Module implements the forecast module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc forecastsvc.Service
}

// New constructs the forecast module around a built pipeline.
// When the service config carries TOKEN the routes are bearer-protected;
// an empty token leaves them open for private deployments
func New(deps modkit.Deps, pipe *pipeline.Pipeline, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("forecast"),
		modkit.WithPrefix("/forecast"),
	}, opts...)...)

	svc := forecastsvc.New(pipe, forecastrepo.NewCH(deps.CH))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptForecastPort{svc: svc}

	// batch scoring is CPU bound, so an inflight cap keeps it from
	// starving the cheap endpoints. 0 leaves it uncapped
	if inflight := deps.Cfg.MayInt("MAX_INFLIGHT", 0); inflight > 0 {
		m.mws = append(m.mws, middleware.Throttle(inflight))
	}

	token := deps.Cfg.MayString("TOKEN", "")
	external := b.Register
	m.register = func(r httpkit.Router) {
		if token == "" {
			forecasthttp.Register(r, m.svc)
		} else {
			httpkit.Protected(r, httpkit.NewStaticToken(token), func(gr httpkit.Router) {
				forecasthttp.Register(gr, m.svc)
			})
		}
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
