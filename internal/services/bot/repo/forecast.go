package repo

import (
	"bytes"
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/logger"
	forecastdom "storecast/internal/services/api/forecast/domain"
	"storecast/internal/services/bot/domain"
)

const (
	predictPath           = "/api/v1/forecast/predict"
	defaultPredictTimeout = 30 * time.Second
	maxPredictBody        = 8 << 20 // scored batches carry per-day rows
)

// ForecastOptions configures the prediction API client
type ForecastOptions struct {
	BaseURL string
	Token   string // optional bearer token, empty means unauthenticated
	Timeout time.Duration
}

// Forecast scores horizons by calling the prediction API over HTTP
type Forecast struct {
	http *http.Client
	opts ForecastOptions
	log  logger.Logger
}

// NewForecast creates a prediction API client with sane defaults
func NewForecast(o ForecastOptions) *Forecast {
	if o.Timeout <= 0 {
		o.Timeout = defaultPredictTimeout
	}
	return &Forecast{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("forecast-client"),
	}
}

// predictEnvelope is the API's response envelope trimmed to what the
// bot reads back
type predictEnvelope struct {
	StatusCode int                         `json:"status_code"`
	Error      string                      `json:"error"`
	Data       forecastdom.PredictResponse `json:"data"`
}

// Predict posts one batch of raw rows and returns the per-store totals
func (f *Forecast) Predict(ctx context.Context, rows []domain.RawRow) ([]domain.StoreTotal, error) {
	if len(rows) == 0 {
		return nil, perr.InvalidArgf("predict called with no rows")
	}
	wire := make([]map[string]any, len(rows))
	for i, r := range rows {
		wire[i] = r
	}
	body, err := json.Marshal(forecastdom.PredictRequest{Rows: wire})
	if err != nil {
		return nil, perr.JSONErrf("encode predict request: %v", err)
	}

	url := f.opts.BaseURL + predictPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "build predict request")
	}
	req.Header.Set("Content-Type", "application/json")
	if f.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.opts.Token)
	}

	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "predict call failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPredictBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read predict response")
	}

	var env predictEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, perr.JSONErrf("decode predict response (status %d): %v", resp.StatusCode, err)
	}

	f.log.Debug().
		Int("rows", len(rows)).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("predict call")

	if resp.StatusCode != http.StatusOK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, perr.Unavailablef("predict rejected: %s", msg)
	}
	return env.Data.Totals, nil
}
