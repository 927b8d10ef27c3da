package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/elix-bot/internal/observability"
)

// Notifier delivers a text to a channel ("@name") or chat id.
type Notifier interface {
	Notify(ctx context.Context, channel, text string) error
}

// NotificationService relays events to the admin channel. Delivery is
// fire-and-forget: failures are logged and counted, never returned, and
// never roll back what triggered them.
type NotificationService struct {
	Sink    Notifier
	Channel string
}

// NewNotificationService targets channel through sink.
func NewNotificationService(sink Notifier, channel string) *NotificationService {
	return &NotificationService{Sink: sink, Channel: strings.TrimSpace(channel)}
}

// Notify sends text to the configured admin channel.
func (s *NotificationService) Notify(ctx context.Context, text string) {
	s.NotifyTo(ctx, s.Channel, text)
}

// NotifyTo sends text to an explicit channel.
func (s *NotificationService) NotifyTo(ctx context.Context, channel, text string) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Notify",
		trace.WithAttributes(attribute.String("notify.channel", channel)),
	)
	defer span.End()

	if s.Sink == nil || channel == "" {
		observability.Notifications.WithLabelValues(observability.OutcomeError).Inc()
		log.Warn().Str("channel", channel).Msg("notification_skipped_unconfigured")
		return
	}
	if err := s.Sink.Notify(ctx, channel, text); err != nil {
		observability.Notifications.WithLabelValues(observability.OutcomeError).Inc()
		span.RecordError(err)
		log.Error().Err(err).Str("channel", channel).Msg("notification_failed")
		return
	}
	observability.Notifications.WithLabelValues(observability.OutcomeOK).Inc()
}
