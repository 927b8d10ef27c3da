// Package router turns one inbound chat message into one outbound action.
// It classifies the text, runs the matching flow against the ledger,
// pricing, assistant and notification services, and tracks which reply
// keyboard each user was last shown.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/observability"
	"github.com/tbourn/elix-bot/internal/redact"
	"github.com/tbourn/elix-bot/internal/services"
	"github.com/tbourn/elix-bot/internal/session"
	"github.com/tbourn/elix-bot/internal/sysutil"
	"github.com/tbourn/elix-bot/internal/utils"
)

// Keyboard names the markup attached to a reply. Rendering is left to the
// transport.
type Keyboard int

const (
	// KeyboardKeep sends no markup; the client keeps the current keyboard.
	KeyboardKeep Keyboard = iota
	KeyboardMain
	KeyboardConsult
	KeyboardConsent
	// KeyboardSupport is an inline button linking to the support contact.
	KeyboardSupport
)

// Message is the transport-neutral view of an inbound text message.
type Message struct {
	Text      string
	SenderID  int64
	ChatID    int64
	Username  string
	MessageID int
}

// Action is what the transport should send back. Handled is false when no
// rule matched, in which case nothing is sent.
type Action struct {
	Intent   Intent
	Handled  bool
	Text     string
	Keyboard Keyboard
	// ReplyTo quotes the inbound message.
	ReplyTo bool
}

// Ledger is the subset of the request ledger the router needs.
type Ledger interface {
	Submit(ctx context.Context, userID int64, rawData string) (*domain.Request, error)
	ListPage(ctx context.Context, status domain.RequestStatus, page, pageSize int) ([]domain.Request, int64, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.RequestStatus) (*domain.Request, error)
}

// Pricer quotes a comma-separated list of test names.
type Pricer interface {
	Quote(ctx context.Context, text string) services.Quote
}

// Assistant answers free-text medical questions.
type Assistant interface {
	Ask(ctx context.Context, text string) services.Outcome
}

// Notifier posts to the admin channel. Failures are handled by the
// implementation and never reach the user.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// AdminList reports whether a sender may use admin commands.
type AdminList interface {
	IsAdmin(id int64) bool
}

// AdminListPageSize is the number of requests shown by /requests.
const AdminListPageSize = 10

// Router dispatches messages. All fields except Admins are required.
type Router struct {
	Sessions  *session.Store
	Ledger    Ledger
	Pricing   Pricer
	Assistant Assistant
	Notifier  Notifier
	Admins    AdminList

	// Location formats timestamps in admin notifications; UTC when nil.
	Location *time.Location
}

// New wires a Router with a fresh session store.
func New(l Ledger, p Pricer, a Assistant, n Notifier, admins AdminList) *Router {
	return &Router{
		Sessions:  session.NewStore(),
		Ledger:    l,
		Pricing:   p,
		Assistant: a,
		Notifier:  n,
		Admins:    admins,
	}
}

// Route classifies msg and executes its flow.
func (r *Router) Route(ctx context.Context, msg Message) Action {
	kb := r.Sessions.Get(msg.SenderID)
	intent := Classify(msg.Text, kb, r.isAdmin(msg.SenderID))
	observability.UpdatesTotal.WithLabelValues(intent.String()).Inc()

	ctx, span := otel.Tracer("router").Start(ctx, "Route",
		trace.WithAttributes(
			attribute.String("intent", intent.String()),
			attribute.String("keyboard", kb.String()),
		))
	defer span.End()

	log.Debug().
		Int64("user_id", msg.SenderID).
		Str("keyboard", kb.String()).
		Str("intent", intent.String()).
		Str("text", redact.Preview(msg.Text, 64)).
		Msg("route")

	act := r.dispatch(ctx, intent, msg)
	act.Intent = intent
	return act
}

func (r *Router) dispatch(ctx context.Context, intent Intent, msg Message) Action {
	switch intent {
	case IntentStart:
		return r.show(msg, session.MainMenu, TextStart, KeyboardMain)
	case IntentBack:
		return r.show(msg, session.MainMenu, TextBack, KeyboardMain)
	case IntentMenuResults:
		return r.show(msg, session.ConsentPending, TextConsentPrompt, KeyboardConsent)
	case IntentConsent:
		return r.show(msg, session.ConsentPending, TextAskData, KeyboardKeep)
	case IntentMenuPricing:
		return r.show(msg, session.MainMenu, TextPricingPrompt, KeyboardKeep)
	case IntentMenuSupport:
		return r.show(msg, session.MainMenu, TextSupport, KeyboardSupport)
	case IntentMenuConsult:
		return r.show(msg, session.ConsultMenu, TextConsultPrompt, KeyboardConsult)
	case IntentConsultAI:
		return r.show(msg, session.ConsultMenu, TextAIPrompt, KeyboardKeep)
	case IntentConsultDoctor:
		r.Notifier.Notify(ctx, "📥 Врач: "+sysutil.Mention(msg.Username, msg.SenderID))
		return r.show(msg, session.ConsultMenu, TextDoctorSent, KeyboardKeep)
	case IntentConsultAdmin:
		r.Notifier.Notify(ctx, "📥 Админ: "+sysutil.Mention(msg.Username, msg.SenderID))
		return r.show(msg, session.ConsultMenu, TextAdminSent, KeyboardKeep)
	case IntentSubmitData:
		return r.submit(ctx, msg)
	case IntentInvalidData:
		return reply(TextInvalidData)
	case IntentPriceLookup:
		return r.price(ctx, msg)
	case IntentAskAI:
		return reply(r.Assistant.Ask(ctx, msg.Text).Reply())
	case IntentAdminRequests:
		return r.adminRequests(ctx, msg)
	case IntentAdminStatus:
		return r.adminStatus(ctx, msg)
	}
	return Action{}
}

func (r *Router) show(msg Message, next session.KeyboardContext, text string, kb Keyboard) Action {
	r.Sessions.Set(msg.SenderID, next)
	return Action{Handled: true, Text: text, Keyboard: kb}
}

func reply(text string) Action {
	return Action{Handled: true, Text: text, ReplyTo: true}
}

func (r *Router) submit(ctx context.Context, msg Message) Action {
	req, err := r.Ledger.Submit(ctx, msg.SenderID, msg.Text)
	if err != nil {
		log.Error().Err(err).Int64("user_id", msg.SenderID).Msg("request submission failed")
		return reply(TextSaveFailed)
	}
	r.Notifier.Notify(ctx, fmt.Sprintf("📥 Заявка #%d (%s):\n%s", req.ID, r.stamp(req.CreatedAt), req.Data))
	act := r.show(msg, session.MainMenu, fmt.Sprintf("✅ Ваша заявка принята! Номер: #%d", req.ID), KeyboardMain)
	act.ReplyTo = true
	return act
}

func (r *Router) price(ctx context.Context, msg Message) Action {
	q := r.Pricing.Quote(ctx, msg.Text)
	if !q.Found() {
		return reply(TextPricingMissing)
	}
	return reply(FormatQuote(q))
}

// FormatQuote renders one line per matched item followed by the total.
func FormatQuote(q services.Quote) string {
	var b strings.Builder
	for i, it := range q.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "🧾 %s — %s ₽", it.Entry.Name, it.Entry.Price.String())
	}
	fmt.Fprintf(&b, "\n\n💰 Итого: %s ₽", q.Total.String())
	return b.String()
}

func (r *Router) adminRequests(ctx context.Context, msg Message) Action {
	_, args, _ := parseCommand(strings.TrimSpace(msg.Text))
	var status domain.RequestStatus
	if args != "" {
		st, ok := domain.ParseRequestStatus(args)
		if !ok {
			return reply(TextAdminUsage)
		}
		status = st
	}
	items, total, err := r.Ledger.ListPage(ctx, status, 1, AdminListPageSize)
	if err != nil {
		log.Error().Err(err).Msg("admin list failed")
		return reply(TextAdminFailed)
	}
	if len(items) == 0 {
		return reply(TextAdminNoItems)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Заявки (%d из %d):", len(items), total)
	for _, it := range items {
		fmt.Fprintf(&b, "\n#%d · %s · %s · %s", it.ID, it.Status, r.stamp(it.CreatedAt), it.Data)
	}
	return reply(b.String())
}

func (r *Router) adminStatus(ctx context.Context, msg Message) Action {
	_, args, _ := parseCommand(strings.TrimSpace(msg.Text))
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return reply(TextAdminUsage)
	}
	id, ok := utils.ParseID(fields[0])
	if !ok {
		return reply(TextAdminUsage)
	}
	status, ok := domain.ParseRequestStatus(fields[1])
	if !ok {
		return reply(TextAdminUsage)
	}
	req, err := r.Ledger.UpdateStatus(ctx, id, status)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return reply(TextAdminNotFound)
	case err != nil:
		log.Error().Err(err).Uint64("ledger_id", id).Msg("admin status update failed")
		return reply(TextAdminFailed)
	}
	log.Info().Int64("admin_id", msg.SenderID).Uint64("ledger_id", req.ID).Str("status", string(req.Status)).Msg("request status changed")
	return reply(fmt.Sprintf("Заявка #%d: статус %s", req.ID, req.Status))
}

func (r *Router) isAdmin(id int64) bool {
	return r.Admins != nil && r.Admins.IsAdmin(id)
}

// stamp formats t as minutes-precision ISO 8601, e.g. 2025-06-01T14:05.
func (r *Router) stamp(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02T15:04")
}
