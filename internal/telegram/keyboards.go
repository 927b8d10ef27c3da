package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/elix-bot/internal/router"
)

// Keyboards renders router keyboard kinds as Telegram markup.
type Keyboards struct {
	SupportURL   string
	SupportLabel string
}

func replyKeyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	kb := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kb = append(kb, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	m := tgbotapi.NewReplyKeyboard(kb...)
	m.ResizeKeyboard = true
	return m
}

// Markup returns the reply_markup for kind, or nil when the current
// keyboard should stay.
func (k Keyboards) Markup(kind router.Keyboard) interface{} {
	switch kind {
	case router.KeyboardMain:
		return replyKeyboard(
			[]string{router.LabelResults, router.LabelPricing},
			[]string{router.LabelConsult, router.LabelSupport},
		)
	case router.KeyboardConsult:
		return replyKeyboard(
			[]string{router.LabelDoctor, router.LabelAI, router.LabelAdmin},
			[]string{router.LabelBack},
		)
	case router.KeyboardConsent:
		return replyKeyboard([]string{router.LabelConsent, router.LabelBack})
	case router.KeyboardSupport:
		if k.SupportURL == "" {
			return nil
		}
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(k.SupportLabel, k.SupportURL)),
		)
	}
	return nil
}
