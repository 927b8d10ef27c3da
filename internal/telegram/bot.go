// Package telegram connects the router to the Telegram Bot API: a long
// poller feeding inbound text messages to the router, and a sender used
// both for replies and for admin channel notifications.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/elix-bot/internal/router"
)

// API is the subset of *tgbotapi.BotAPI used here.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewAPI authenticates against the Bot API. An empty endpoint uses the
// public Telegram server.
func NewAPI(token, endpoint string, debug bool) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	api.Debug = debug
	log.Info().Str("bot", api.Self.UserName).Msg("telegram_authorized")
	return api, nil
}

// Bot sends messages. It implements services.Notifier.
type Bot struct {
	API       API
	Keyboards Keyboards
	// MaxTries bounds delivery attempts on rate limiting (429).
	MaxTries uint
}

// NewBot wraps api.
func NewBot(api API, kb Keyboards) *Bot {
	return &Bot{API: api, Keyboards: kb, MaxTries: 3}
}

// Reply sends act to chatID. replyTo is the inbound message id, quoted when
// act asks for it.
func (b *Bot) Reply(ctx context.Context, chatID int64, replyTo int, act router.Action) error {
	m := tgbotapi.NewMessage(chatID, act.Text)
	if act.ReplyTo {
		m.ReplyToMessageID = replyTo
	}
	if markup := b.Keyboards.Markup(act.Keyboard); markup != nil {
		m.ReplyMarkup = markup
	}
	return b.send(ctx, m)
}

// Notify posts text to a channel given as "@name" or a numeric chat id.
func (b *Bot) Notify(ctx context.Context, channel, text string) error {
	channel = strings.TrimSpace(channel)
	if strings.HasPrefix(channel, "@") {
		return b.send(ctx, tgbotapi.NewMessageToChannel(channel, text))
	}
	id, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid channel %q", channel)
	}
	return b.send(ctx, tgbotapi.NewMessage(id, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	tries := b.MaxTries
	if tries == 0 {
		tries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (tgbotapi.Message, error) {
		msg, err := b.API.Send(c)
		if err == nil {
			return msg, nil
		}
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			log.Warn().Int("retry_after", apiErr.RetryAfter).Msg("telegram_rate_limited")
			return msg, backoff.RetryAfter(apiErr.RetryAfter)
		}
		return msg, backoff.Permanent(err)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(tries))
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}
