// Package http provides http transport for forecasts
package http

import (
	stdhttp "net/http"
	"strconv"

	"storecast/internal/modkit/httpkit"
	perr "storecast/internal/platform/errors"
	"storecast/internal/services/api/forecast/domain"
	svc "storecast/internal/services/api/forecast/service"
)

// predict bodies run to a few thousand rows, well past the default cap
var predictBody = httpkit.JSONOptions{MaxBytes: 8 << 20, DisallowUnknown: true}

// Register mounts forecast endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// score one batch of horizon rows
	httpkit.PostJSONOpts[domain.PredictRequest](r, "/predict", h.predict, predictBody)

	// fitted artifact metadata for deploy-time skew checks
	httpkit.Get(r, "/state", h.state)

	// issued forecasts from the audit sink
	httpkit.Get(r, "/history", h.history)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /forecast/predict Forecast forecastPredict
// @Summary Score a batch of raw horizon rows
// @Tags Forecast
// @Accept json
// @Produce json
// @Param payload body domain.PredictRequest true "Batch"
// @Success 200 {object} domain.PredictResponse "ok"
// @Router /forecast/predict [post]
func (h *handlers) predict(r *stdhttp.Request, in domain.PredictRequest) (any, error) {
	return h.svc.Predict(r.Context(), in)
}

// swagger:route GET /forecast/state Forecast forecastState
// @Summary Fitted state and model metadata
// @Tags Forecast
// @Produce json
// @Success 200 {object} domain.StateResponse "ok"
// @Router /forecast/state [get]
func (h *handlers) state(r *stdhttp.Request) (any, error) {
	return h.svc.State(r.Context())
}

// swagger:route GET /forecast/history Forecast forecastHistory
// @Summary Recent issued forecasts for one store
// @Tags Forecast
// @Produce json
// @Param store query int true "Store id"
// @Param limit query int false "Max rows, default 50"
// @Success 200 {array} domain.HistoryRow "ok"
// @Router /forecast/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()

	storeID, err := strconv.ParseInt(q.Get("store"), 10, 64)
	if err != nil || storeID <= 0 {
		return nil, perr.WithField(perr.InvalidArgf("store must be a positive integer"), "store")
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, perr.WithField(perr.InvalidArgf("limit must be a positive integer"), "limit")
		}
	}

	return h.svc.History(r.Context(), storeID, limit)
}
