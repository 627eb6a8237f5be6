// Package module wires the bot webhook into an HTTP process using modkit
package module

import (
	"net/http"
	"strings"
	"time"

	"storecast/internal/adapters/chat"
	modkit "storecast/internal/modkit"
	"storecast/internal/modkit/httpkit"
	str "storecast/internal/platform/strings"
	"storecast/internal/services/bot/domain"
	bothttp "storecast/internal/services/bot/http"
	botrepo "storecast/internal/services/bot/repo"
	botsvc "storecast/internal/services/bot/service"
)

// secretHeader is echoed by Telegram on every webhook push when the
// webhook was registered with a secret token
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Module implements the bot module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc botsvc.Service
}

// New constructs the bot module. WEBHOOK_SECRET guards the endpoint when
// set; an empty secret leaves it open for local runs behind a tunnel
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("bot"),
		modkit.WithPrefix("/"),
	}, opts...)...)

	cfg := deps.Cfg

	var source domain.HorizonSource
	switch cfg.MayEnum("SOURCE", "pg", "pg", "csv") {
	case "csv":
		source = botrepo.NewCSV(
			cfg.MayString("SCHEDULE_CSV", "test.csv"),
			cfg.MayString("STORE_CSV", "store.csv"),
		)
	default:
		if deps.PG == nil {
			panic("bot module requires a postgres handle when SOURCE is pg")
		}
		source = botrepo.NewPG().Bind(deps.PG)
	}

	scorer := botrepo.NewForecast(botrepo.ForecastOptions{
		BaseURL: strings.TrimRight(cfg.MustURL("API_URL").String(), "/"),
		Token:   cfg.MayString("API_TOKEN", ""),
		Timeout: cfg.MayDuration("API_TIMEOUT", 30*time.Second),
	})

	notifier := chat.NewClient(chat.Options{
		BaseURL: cfg.MayString("TELEGRAM_API", ""),
		Token:   cfg.MustString("TELEGRAM_TOKEN"),
		Timeout: cfg.MayDuration("TELEGRAM_TIMEOUT", 10*time.Second),
	})

	format := botsvc.NewFormatter(
		cfg.MayString("LOCALE", "en"),
		cfg.MayString("CURRENCY", "BRL"),
	)

	svc := botsvc.New(source, scorer, notifier, format)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptBotPort{svc: svc}

	secret := cfg.MayString("WEBHOOK_SECRET", "")
	external := b.Register
	m.register = func(r httpkit.Router) {
		if secret == "" {
			bothttp.Register(r, m.svc)
		} else {
			httpkit.Protected(r, httpkit.NewHeaderSecret(secretHeader, secret), func(gr httpkit.Router) {
				bothttp.Register(gr, m.svc)
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
