package module

import (
	"context"

	"storecast/internal/services/api/forecast/domain"
	forecastsvc "storecast/internal/services/api/forecast/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptForecastPort struct{ svc forecastsvc.Service }

// Predict scores one batch of raw horizon rows
func (a adaptForecastPort) Predict(ctx context.Context, in domain.PredictRequest) (domain.PredictResponse, error) {
	return a.svc.Predict(ctx, in)
}

// State reports the fitted artifacts the process serves with
func (a adaptForecastPort) State(ctx context.Context) (domain.StateResponse, error) {
	return a.svc.State(ctx)
}

// History returns recent issued forecasts for one store
func (a adaptForecastPort) History(ctx context.Context, store int64, limit int) ([]domain.HistoryRow, error) {
	return a.svc.History(ctx, store, limit)
}
