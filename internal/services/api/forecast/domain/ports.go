package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Predict(ctx context.Context, in PredictRequest) (PredictResponse, error)
	State(ctx context.Context) (StateResponse, error)
	History(ctx context.Context, store int64, limit int) ([]HistoryRow, error)
}
