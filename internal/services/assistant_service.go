// Package services – AssistantService
//
// AssistantService wraps a single completion call with a fixed system
// instruction that forbids diagnoses. Provider failures never reach the
// user as errors: Ask returns a typed Outcome and the caller renders the
// matching fallback text with Outcome.Reply. The cause is kept on the
// Outcome and logged here for operators.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tbourn/elix-bot/internal/ai"
	"github.com/tbourn/elix-bot/internal/observability"
)

const (
	// AssistantSystemPrompt constrains the model to non-diagnostic answers.
	AssistantSystemPrompt = "Ты медицинский ассистент без права ставить диагноз."

	assistantPromptFormat = "Пациент спрашивает: %s\nОтветь кратко, без диагноза, но по сути."

	// FallbackProviderError is shown when the provider fails.
	FallbackProviderError = "⚠️ Ошибка при обращении к ИИ. Попробуйте позже."
	// FallbackTimeout is shown when the provider does not answer in time.
	FallbackTimeout = "⚠️ ИИ не ответил вовремя. Попробуйте задать вопрос позже."
)

// OutcomeKind classifies an assistant call.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeProviderError
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "provider_error"
	}
}

// Outcome is the result of Ask. Text is set on success, Err otherwise.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Reply returns the provider text unchanged on success and the fallback
// matching the failure kind otherwise.
func (o Outcome) Reply() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Text
	case OutcomeTimeout:
		return FallbackTimeout
	default:
		return FallbackProviderError
	}
}

// AssistantService answers medical questions through an ai.Completer.
type AssistantService struct {
	Client ai.Completer
	// Timeout bounds a single call; zero leaves it to the provider.
	Timeout time.Duration
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(c ai.Completer, timeout time.Duration) *AssistantService {
	return &AssistantService{Client: c, Timeout: timeout}
}

// Prompt renders the user prompt sent to the provider.
func Prompt(userText string) string {
	return fmt.Sprintf(assistantPromptFormat, strings.TrimSpace(userText))
}

// Ask sends userText to the provider. It never returns an error; failures
// are classified in the Outcome.
func (s *AssistantService) Ask(ctx context.Context, userText string) Outcome {
	tr := otel.Tracer("services/AssistantService")
	ctx, span := tr.Start(ctx, "Ask")
	defer span.End()

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.Client.Complete(callCtx, AssistantSystemPrompt, Prompt(userText))
	observability.AILatency.Observe(time.Since(start).Seconds())

	out := Outcome{Kind: OutcomeSuccess, Text: text}
	switch {
	case err == nil && strings.TrimSpace(text) == "":
		out = Outcome{Kind: OutcomeProviderError, Err: ai.ErrEmptyCompletion}
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		out = Outcome{Kind: OutcomeTimeout, Err: err}
	case err != nil:
		out = Outcome{Kind: OutcomeProviderError, Err: err}
	}

	span.SetAttributes(attribute.String("ai.outcome", out.Kind.String()))
	switch out.Kind {
	case OutcomeSuccess:
		observability.AIRequests.WithLabelValues(observability.OutcomeOK).Inc()
	case OutcomeTimeout:
		observability.AIRequests.WithLabelValues(observability.OutcomeTimeout).Inc()
		span.SetStatus(codes.Error, "timeout")
		log.Warn().Err(out.Err).Dur("timeout", s.Timeout).Msg("ai_timeout")
	default:
		observability.AIRequests.WithLabelValues(observability.OutcomeError).Inc()
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "provider error")
		log.Error().Err(out.Err).Msg("ai_provider_error")
	}
	return out
}
