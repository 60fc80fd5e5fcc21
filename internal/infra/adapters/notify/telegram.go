package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/ports/adapter"
)

var _ adapter.LeadNotifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts lead alerts into a single Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

// NewTelegramNotifier verifies the token with getMe. endpoint may be empty to
// use the public Bot API.
func NewTelegramNotifier(token string, chatID int64, endpoint string, log *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("%w: telegram token or chat id not set", domain.ErrMissingConfig)
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Int64("chat_id", chatID).Msg("telegram lead alerts enabled")
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: telegram: %v", domain.ErrNotifyFailed, err)
	}
	return nil
}
