// Package telegram serves registry lookups to Telegram users over long polling.
package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"innbot/internal/registry/domain/identifier"
	"innbot/internal/registry/report"
	"innbot/internal/registry/service"
	"innbot/pkg/requestcontext"
)

// DefaultWorkers bounds concurrently handled updates.
const DefaultWorkers = 8

// Commands answered with the greeting.
const (
	CommandStart = "start"
	CommandHelp  = "help"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// LookupService answers one identifier query.
type LookupService interface {
	Lookup(ctx context.Context, raw string) (*service.Reply, error)
}

// Bot routes incoming messages to the lookup service.
type Bot struct {
	api         BotAPI
	service     LookupService
	logger      *slog.Logger
	metrics     *Metrics
	workers     int
	pollTimeout time.Duration
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets the logger for the bot.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithMetrics records handled messages.
func WithMetrics(m *Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithWorkers bounds concurrent message handling. Non-positive values are ignored.
func WithWorkers(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithPollTimeout sets the long-polling timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.pollTimeout = d
		}
	}
}

// New creates a bot on top of api.
func New(api BotAPI, svc LookupService, opts ...Option) *Bot {
	b := &Bot{
		api:         api,
		service:     svc,
		logger:      slog.Default(),
		workers:     DefaultWorkers,
		pollTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run polls for updates until ctx is cancelled, then stops polling and waits
// for in-flight messages to be answered.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(b.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(cfg)

	var g errgroup.Group
	g.SetLimit(b.workers)

	b.logger.InfoContext(ctx, "telegram bot polling", "workers", b.workers)
	defer b.logger.InfoContext(ctx, "telegram bot stopped")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			g.Go(func() error {
				b.HandleMessage(ctx, msg)
				return nil
			})
		}
	}
}

// HandleMessage answers one incoming message.
//
// /start and /help get the greeting. A valid identifier gets the "typing"
// action followed by the report. Everything else, including unknown commands
// and non-text messages, gets the invalid-input text.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
	ctx = requestcontext.WithChannel(ctx, requestcontext.ChannelTelegram)
	ctx = requestcontext.WithTime(ctx, time.Now())
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case CommandStart, CommandHelp:
			b.metrics.recordMessage(messageCommand)
			b.send(ctx, tgbotapi.NewMessage(chatID, report.GreetingMessage))
			return
		}
	}

	if !identifier.Classify(msg.Text).Valid() {
		b.metrics.recordMessage(messageInvalid)
		b.send(ctx, tgbotapi.NewMessage(chatID, report.InvalidInputMessage))
		return
	}

	b.metrics.recordMessage(messageLookup)
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.WarnContext(ctx, "failed to send chat action",
			"chat_id", chatID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	reply, err := b.service.Lookup(ctx, msg.Text)
	if err != nil {
		b.send(ctx, tgbotapi.NewMessage(chatID, report.LookupFailureMessage(service.FailureReason(err))))
		return
	}

	out := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Valid {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	b.send(ctx, out)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.metrics.recordSendError()
		b.logger.ErrorContext(ctx, "failed to send telegram message",
			"chat_id", msg.ChatID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
