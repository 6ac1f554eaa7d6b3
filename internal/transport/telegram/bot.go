package telegram

import (
	"context"
	"fmt"
	"regexp"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/membot/internal/config"
	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/internal/service/chat"
	"github.com/sandevgo/membot/pkg/log"
)

const baseContextKey = "base_context"

// Only image attachments enter the multimodal path; everything else is
// ignored at ingestion.
var imageNameRe = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|bmp|tiff)$`)

type Bot struct {
	bot          *tele.Bot
	cfg          *config.TelegramConfig
	orchestrator *chat.Orchestrator
	sender       *sender
	ownerID      int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	orchestrator *chat.Orchestrator,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:          b,
		cfg:          cfg,
		orchestrator: orchestrator,
		sender:       newSender(b),
		ownerID:      cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle(tele.OnPhoto, bot.handleMessage)
	b.Handle(tele.OnDocument, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	query := core.Query{
		RawText:     messageText(c.Message()),
		AuthorID:    fmt.Sprintf("telegram-%d", c.Sender().ID),
		Attachments: b.collectAttachments(ctx, c.Message()),
	}

	answer, err := b.orchestrator.HandleQuery(ctx, query)
	if err != nil {
		logger.Error().Err(err).Msg("query handling failed")
		return c.Send("Something went wrong on my side, please try again.")
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), answer, false)
}

func messageText(m *tele.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// collectAttachments builds image attachment references from a message.
// Photos carry no filename, so they pass the filter with a synthetic
// .jpg name the way Telegram serves them.
func (b *Bot) collectAttachments(ctx context.Context, m *tele.Message) []core.AttachmentRef {
	logger := log.FromCtx(ctx)
	var refs []core.AttachmentRef

	if m.Photo != nil {
		url, err := b.bot.FileURLByID(m.Photo.FileID)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to resolve photo url")
		} else {
			refs = append(refs, core.AttachmentRef{
				URL:      url,
				MimeType: "image/jpeg",
				FileName: "photo.jpg",
			})
		}
	}

	if m.Document != nil && imageNameRe.MatchString(m.Document.FileName) {
		url, err := b.bot.FileURLByID(m.Document.FileID)
		if err != nil {
			logger.Warn().Err(err).Str("file", m.Document.FileName).Msg("failed to resolve document url")
		} else {
			refs = append(refs, core.AttachmentRef{
				URL:      url,
				MimeType: m.Document.MIME,
				FileName: m.Document.FileName,
			})
		}
	}

	return refs
}
