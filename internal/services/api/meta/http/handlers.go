// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"storecast/internal/core/version"
	"storecast/internal/modkit/httpkit"
	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/store"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	// mount routes
	httpkit.Get(r, "/healthz", h.healthz)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/stats", h.stats)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the liveness payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"storecast-api"`
	Started string `json:"started"  example:"2015-08-01T13:00:00Z"`
	Now     string `json:"now"      example:"2015-08-01T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"ch"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:9000 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2015-08-01T13:05:00Z"`
}

// CoverageResponse reports how much horizon data the seed has loaded
// swagger:model
type CoverageResponse struct {
	Stores       int64  `json:"stores"        example:"1115"`
	ScheduleDays int64  `json:"schedule_days" example:"41088"`
	HorizonFrom  string `json:"horizon_from,omitempty" example:"2015-08-01"`
	HorizonTo    string `json:"horizon_to,omitempty"   example:"2015-09-17"`
	Now          string `json:"now" example:"2015-08-01T13:05:00Z"`
}

// swagger:route GET /meta/healthz Meta metaHealthz
// @Summary Liveness check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse ok
// @Router /meta/healthz [get]
func (h *handlers) healthz(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	// a skipped backend is not configured and does not degrade readiness
	overall := "ok"
	for _, c := range []ReadyCheck{pg, ch} {
		switch c.Status {
		case "fail":
			overall = "fail"
		case "unknown":
			if overall == "ok" {
				overall = "degraded"
			}
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg, ch},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// coverage is the one row aggregate behind /stats
type coverage struct {
	stores int64
	days   int64
	from   *time.Time
	to     *time.Time
}

func scanCoverage(row store.Row) (coverage, error) {
	var c coverage
	err := row.Scan(&c.stores, &c.days, &c.from, &c.to)
	return c, err
}

// swagger:route GET /meta/stats Meta metaStats
// @Summary Seeded store and schedule coverage
// @Tags Meta
// @Produce json
// @Success 200 type CoverageResponse ok
// @Router /meta/stats [get]
func (h *handlers) stats(r *http.Request) (any, error) {
	q, ok := h.deps.PG.(store.RowQuerier)
	if !ok || q == nil {
		return nil, perr.Unavailablef("postgres is not configured")
	}

	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// the aggregate always yields one row, even on empty tables
	cov, err := store.One(ctx, q, scanCoverage,
		`select (select count(*) from stores), count(*), min(date), max(date) from schedule`)
	if err != nil {
		return nil, err
	}

	resp := CoverageResponse{
		Stores:       cov.stores,
		ScheduleDays: cov.days,
		Now:          time.Now().UTC().Format(time.RFC3339),
	}
	if cov.from != nil {
		resp.HorizonFrom = cov.from.Format("2006-01-02")
	}
	if cov.to != nil {
		resp.HorizonTo = cov.to.Format("2006-01-02")
	}
	return resp, nil
}
