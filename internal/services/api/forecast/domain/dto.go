// Package domain holds DTOs for forecast http and service contracts
package domain

// PredictRequest carries one batch of raw horizon rows to score.
// Row keys follow the corpus headers and are matched case-insensitively;
// the pipeline rejects rows that do not normalize
type PredictRequest struct {
	Rows []map[string]any `json:"rows" validate:"required,min=1,max=3000,dive,required"`
}

// PredictionRow is one scored open day in currency units
type PredictionRow struct {
	Store int64   `json:"store" example:"22"`
	Date  string  `json:"date" example:"2015-09-05"`
	Sales float64 `json:"sales" example:"5263.42"`
}

// StoreTotal aggregates the scored horizon for one store
type StoreTotal struct {
	Store       int64   `json:"store" example:"22"`
	Sales       float64 `json:"sales" example:"241500.32"`
	HorizonDays int     `json:"horizon_days" example:"42"`
}

// PredictResponse is the scored batch. Closed rows are excluded, so
// predictions can be shorter than the request; totals follow first-seen
// store order
type PredictResponse struct {
	BatchID     string          `json:"batch_id" example:"9b8ae23e-7b2e-44c1-a7a4-16cfcbc2f9a1"`
	Predictions []PredictionRow `json:"predictions"`
	Totals      []StoreTotal    `json:"totals"`
}

// ModelInfo summarizes the loaded scorer artifact
type ModelInfo struct {
	Kind     string `json:"kind" example:"gbrt"`
	Trees    int    `json:"trees" example:"200"`
	Features int    `json:"features" example:"23"`
}

// StateResponse describes the fitted artifacts the process serves with.
// Deploy checks compare this against what the release expects
type StateResponse struct {
	Version    int            `json:"version" example:"1"`
	TrainedAt  string         `json:"trained_at" example:"2015-07-31T00:00:00Z"`
	Features   int            `json:"features" example:"23"`
	Selected   []string       `json:"selected"`
	VocabSizes map[string]int `json:"vocab_sizes"`
	Model      ModelInfo      `json:"model"`
}

// HistoryRow is one previously issued forecast from the audit sink
type HistoryRow struct {
	BatchID  string  `json:"batch_id" example:"9b8ae23e-7b2e-44c1-a7a4-16cfcbc2f9a1"`
	Store    int64   `json:"store" example:"22"`
	Date     string  `json:"date" example:"2015-09-05"`
	Sales    float64 `json:"sales" example:"5263.42"`
	IssuedAt string  `json:"issued_at" example:"2015-08-01T12:30:00Z"`
}
