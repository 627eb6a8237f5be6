// Package domain holds the webhook update shapes and ports for the bot
package domain

import (
	"strconv"
	"strings"

	"storecast/internal/core/pipeline"
	perr "storecast/internal/platform/errors"
	forecastdom "storecast/internal/services/api/forecast/domain"
)

// RawRow re-exports the raw row shape the prediction API consumes
type RawRow = pipeline.Row

// StoreTotal re-exports the API's per-store aggregate
type StoreTotal = forecastdom.StoreTotal

// Update is an incoming Telegram update. Only the message branch is used;
// edits, callbacks and the rest are ignored
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the text message branch of an update
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies where the reply goes
type Chat struct {
	ID int64 `json:"id"`
}

// ParseCommand extracts the store id from a /<store-id> command.
// A trailing @botname suffix is tolerated
func ParseCommand(text string) (int64, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "/") {
		return 0, perr.InvalidArgf("not a command: %q", text)
	}
	s = strings.TrimLeft(s, "/")
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, perr.InvalidArgf("not a store command: %q", text)
	}
	return id, nil
}
