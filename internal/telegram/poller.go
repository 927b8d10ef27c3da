package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/elix-bot/internal/redact"
	"github.com/tbourn/elix-bot/internal/router"
)

// Handler turns one message into one action.
type Handler interface {
	Route(ctx context.Context, msg router.Message) router.Action
}

// Poller long-polls for updates and processes them one at a time, so
// messages from a sender are handled in arrival order.
type Poller struct {
	API         API
	Bot         *Bot
	Handler     Handler
	Timeout     time.Duration
	SkipPending bool
}

// NewPoller builds a poller that replies through bot.
func NewPoller(bot *Bot, h Handler, timeout time.Duration, skipPending bool) *Poller {
	return &Poller{API: bot.API, Bot: bot, Handler: h, Timeout: timeout, SkipPending: skipPending}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(p.Timeout / time.Second)
	if p.SkipPending {
		cfg.Offset = p.skipPending()
	}

	updates := p.API.GetUpdatesChan(cfg)
	log.Info().Int("offset", cfg.Offset).Msg("telegram_polling_started")
	for {
		select {
		case <-ctx.Done():
			p.API.StopReceivingUpdates()
			log.Info().Msg("telegram_polling_stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			p.handle(ctx, u)
		}
	}
}

// skipPending acknowledges everything queued while the bot was offline and
// returns the offset to continue from.
func (p *Poller) skipPending() int {
	cfg := tgbotapi.NewUpdate(-1)
	cfg.Limit = 1
	ups, err := p.API.GetUpdates(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("telegram_skip_pending_failed")
		return 0
	}
	if len(ups) == 0 {
		return 0
	}
	last := ups[len(ups)-1].UpdateID
	log.Info().Int("last_update_id", last).Msg("telegram_pending_skipped")
	return last + 1
}

func (p *Poller) handle(ctx context.Context, u tgbotapi.Update) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return
	}
	start := time.Now()
	l := log.With().
		Int("update_id", u.UpdateID).
		Int64("user_id", m.From.ID).
		Logger()
	ctx = l.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error().Interface("panic", rec).Str("text", redact.Preview(m.Text, 64)).Msg("update_panic")
			apology := router.Action{Handled: true, Text: router.TextInternalError, ReplyTo: true}
			if err := p.Bot.Reply(ctx, m.Chat.ID, m.MessageID, apology); err != nil {
				l.Error().Err(err).Msg("update_panic_reply_failed")
			}
		}
	}()

	act := p.Handler.Route(ctx, router.Message{
		Text:      m.Text,
		SenderID:  m.From.ID,
		ChatID:    m.Chat.ID,
		Username:  m.From.UserName,
		MessageID: m.MessageID,
	})
	ev := l.Info()
	if !act.Handled {
		ev = l.Debug()
	} else if err := p.Bot.Reply(ctx, m.Chat.ID, m.MessageID, act); err != nil {
		ev = l.Error().Err(err)
	}
	ev.Str("intent", act.Intent.String()).
		Bool("handled", act.Handled).
		Dur("took", time.Since(start)).
		Msg("update")
}

// clientLogger routes the Bot API client's own logging into zerolog.
type clientLogger struct{ l zerolog.Logger }

func (c clientLogger) Println(v ...interface{}) {
	c.l.Warn().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}
func (c clientLogger) Printf(format string, v ...interface{}) {
	c.l.Warn().Msgf(format, v...)
}

// InstallClientLogger replaces the Bot API client's default logger.
func InstallClientLogger() error {
	return tgbotapi.SetLogger(clientLogger{l: log.With().Str("component", "tgbotapi").Logger()})
}
