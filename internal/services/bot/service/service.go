// Package service contains the bot's reply workflow
package service

import (
	"context"

	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/logger"
	"storecast/internal/services/bot/domain"
)

// Reply texts. The sold reply comes from the Formatter; these cover the
// remaining outcomes
const (
	usageText       = "Send /<store-id> to get a six week forecast, e.g. /24."
	notFoundText    = "Store not found."
	unavailableText = "Sorry, the forecast service is unavailable right now. Try again in a bit."
)

// Service defines the bot service contract
type Service interface {
	domain.WebhookPort
}

// Svc answers store commands with forecast totals. Every recognized chat
// gets exactly one reply per update; failures degrade to an apology text
// rather than silence
type Svc struct {
	source domain.HorizonSource
	scorer domain.Forecaster
	notify domain.Notifier
	format *Formatter
}

// New constructs the bot service
func New(source domain.HorizonSource, scorer domain.Forecaster, notify domain.Notifier, format *Formatter) *Svc {
	if source == nil {
		panic("bot.Service requires a horizon source")
	}
	if scorer == nil {
		panic("bot.Service requires a forecaster")
	}
	if notify == nil {
		panic("bot.Service requires a notifier")
	}
	if format == nil {
		format = NewFormatter("en", "BRL")
	}
	return &Svc{source: source, scorer: scorer, notify: notify, format: format}
}

// Handle processes one update. Parse failures and missing stores answer
// with a help or not-found text; only reply delivery errors propagate so
// the webhook can signal redelivery
func (s *Svc) Handle(ctx context.Context, upd domain.Update) error {
	if upd.Message == nil || upd.Message.Chat.ID == 0 {
		logger.C(ctx).Debug().Int64("update_id", upd.UpdateID).Msg("bot: update without message")
		return nil
	}
	chatID := upd.Message.Chat.ID

	store, err := domain.ParseCommand(upd.Message.Text)
	if err != nil {
		return s.reply(ctx, chatID, usageText)
	}

	rows, err := s.source.RowsForStore(ctx, store)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return s.reply(ctx, chatID, notFoundText)
		}
		logger.C(ctx).Warn().Err(err).Int64("store", store).Msg("bot: horizon lookup failed")
		return s.reply(ctx, chatID, unavailableText)
	}

	totals, err := s.scorer.Predict(ctx, rows)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int64("store", store).Msg("bot: predict failed")
		return s.reply(ctx, chatID, unavailableText)
	}

	for _, t := range totals {
		if t.Store == store {
			return s.reply(ctx, chatID, s.format.Sold(t.Store, t.Sales, t.HorizonDays))
		}
	}
	// every horizon day closed, nothing was scored
	return s.reply(ctx, chatID, notFoundText)
}

func (s *Svc) reply(ctx context.Context, chatID int64, text string) error {
	if err := s.notify.Send(ctx, chatID, text); err != nil {
		logger.C(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("bot: reply send failed")
		return perr.Wrapf(err, perr.CodeOf(err), "send reply")
	}
	return nil
}
