// Package http provides the webhook transport for the bot
package http

import (
	stdhttp "net/http"

	"storecast/internal/modkit/httpkit"
	"storecast/internal/services/bot/domain"
	svc "storecast/internal/services/bot/service"
)

// Telegram updates carry many fields beyond the message branch, so
// unknown keys must pass
var webhookBody = httpkit.JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: false}

// Register mounts the webhook endpoint on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// telegram pushes updates here
	httpkit.PostJSONOpts[domain.Update](r, "/webhook", h.webhook, webhookBody)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /webhook Bot botWebhook
// @Summary Receive one Telegram update
// @Tags Bot
// @Accept json
// @Produce json
// @Param payload body domain.Update true "Update"
// @Success 200 {object} map[string]bool "ok"
// @Router /webhook [post]
func (h *handlers) webhook(r *stdhttp.Request, in domain.Update) (any, error) {
	if err := h.svc.Handle(r.Context(), in); err != nil {
		// non-200 makes Telegram redeliver the update
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}
