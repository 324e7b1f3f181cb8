package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/linkgrab/linkgrab/internal/service"
)

const welcomeText = "Hello! Send me a link to a post or video and I will download it for you!\n" +
	"Supported social media:\n" +
	"\t○ Instagram\n" +
	"\t○ YouTube"

// Bot runs the chat update loop. Each update is handled in its own
// goroutine; the store and the filesystem are the only shared state.
type Bot struct {
	api    *tgbotapi.BotAPI
	links  *service.LinkService
	users  *service.UserService
	logger *slog.Logger
}

// NewBot creates the update-loop bot.
func NewBot(api *tgbotapi.BotAPI, links *service.LinkService, users *service.UserService, logger *slog.Logger) *Bot {
	return &Bot{api: api, links: links, users: users, logger: logger}
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	logger := b.logger.With("telegram_id", msg.From.ID, "chat_id", msg.Chat.ID)

	user, err := b.users.Ensure(ctx, msg.From.ID,
		msg.From.FirstName, msg.From.LastName, msg.From.UserName, msg.From.LanguageCode)
	if err != nil {
		logger.Error("user bookkeeping failed", "error", err)
		return
	}

	if msg.IsCommand() {
		if msg.Command() == "start" {
			logger.Info("start command")
			if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, welcomeText)); err != nil {
				logger.Error("welcome reply failed", "error", err)
			}
		}
		return
	}

	logger.Info("link message", "text", msg.Text)
	if err := b.links.HandleLink(ctx, msg.Chat.ID, user, msg.Text); err != nil {
		logger.Error("link handling failed", "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	logger := b.logger.With("telegram_id", cq.From.ID)

	// Acknowledge immediately so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logger.Warn("callback ack failed", "error", err)
	}
	if cq.Message == nil {
		return
	}

	sel, err := DecodeSelection(cq.Data)
	if err != nil {
		logger.Warn("bad callback data", "data", cq.Data, "error", err)
		return
	}
	if err := b.links.HandleSelection(ctx, cq.Message.Chat.ID, sel); err != nil {
		logger.Error("selection handling failed", "error", err)
	}
}
