package module

import (
	"context"

	"storecast/internal/services/bot/domain"
	botsvc "storecast/internal/services/bot/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptBotPort struct{ svc botsvc.Service }

// Handle processes one Telegram update end to end
func (a adaptBotPort) Handle(ctx context.Context, upd domain.Update) error {
	return a.svc.Handle(ctx, upd)
}
