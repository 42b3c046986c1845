package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahans/shopstock/internal/domain/items"
)

// LowStock sends a Telegram message when a mutation leaves warehouse stock
// low. A nil notifier is valid and does nothing, so callers never branch.
type LowStock struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// New returns nil when no token is configured.
func New(token string, chatID int64, log *slog.Logger) (*LowStock, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &LowStock{api: api, chatID: chatID, log: log}, nil
}

// Check alerts on the item if its warehouse quantity is low. Send failures
// are logged and swallowed; alerts never fail the triggering operation.
func (n *LowStock) Check(it items.Item, threshold int) {
	if n == nil {
		return
	}
	if !items.LowStock(it.WarehouseQty, threshold) {
		return
	}
	text := fmt.Sprintf("⚠️ Low stock: %s — %d %s left in warehouse", it.Name, it.WarehouseQty, it.Unit)
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.log.Error("low stock alert failed", "item", it.Name, "err", err)
	}
}
