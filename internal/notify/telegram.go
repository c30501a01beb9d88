package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramTimeout bounds every Bot API request
const TelegramTimeout = 10 * time.Second

// MessageSender sends a Telegram message. *tg.BotAPI satisfies it.
type MessageSender interface {
	Send(c tg.Chattable) (tg.Message, error)
}

// TelegramNotifier posts notifications to one Telegram chat
type TelegramNotifier struct {
	bot    MessageSender
	chatID int64
}

// NewTelegramNotifier authorizes the bot token and returns a notifier for chatID
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tg.NewBotAPIWithClient(token, tg.APIEndpoint, &http.Client{Timeout: TelegramTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

// NewTelegramNotifierWithSender creates a notifier over an existing sender
func NewTelegramNotifierWithSender(bot MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Notify implements Notifier
func (n *TelegramNotifier) Notify(ctx context.Context, title, body string) error {
	msg := tg.NewMessage(n.chatID, title+"\n\n"+body)
	err := sendWithContext(ctx, func() error {
		_, err := n.bot.Send(msg)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
