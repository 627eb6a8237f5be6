package domain

import "context"

// WebhookPort is the bot surface mounted by the module
type WebhookPort interface {
	// Handle processes one update end to end, replying over the notifier.
	// It returns an error only when the reply itself could not be sent
	Handle(ctx context.Context, upd Update) error
}

// HorizonSource yields the raw scoring rows for one store's open horizon
type HorizonSource interface {
	RowsForStore(ctx context.Context, store int64) ([]RawRow, error)
}

// Forecaster scores raw rows and returns per-store totals
type Forecaster interface {
	Predict(ctx context.Context, rows []RawRow) ([]StoreTotal, error)
}

// Notifier delivers a text reply to a chat
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}
