package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/observability"
	"github.com/tbourn/elix-bot/internal/search"
)

// Quote is an itemised price estimate. An empty Items slice means nothing
// matched and must be reported as such, never as a zero total.
type Quote struct {
	Items []domain.MatchResult
	Total decimal.Decimal
}

// Found reports whether at least one fragment matched.
func (q Quote) Found() bool { return len(q.Items) > 0 }

// PricingService resolves free-text test lists into a priced quote.
type PricingService struct {
	Index search.Index
}

// NewPricingService wraps a matcher.
func NewPricingService(idx search.Index) *PricingService {
	return &PricingService{Index: idx}
}

// Quote matches every comma-separated fragment of text and totals the
// prices. Repeated fragments are charged once per occurrence.
func (s *PricingService) Quote(ctx context.Context, text string) Quote {
	_, span := otel.Tracer("services/PricingService").Start(ctx, "Quote")
	defer span.End()

	items := s.Index.Match(text)
	q := Quote{Items: items, Total: search.Total(items)}

	span.SetAttributes(
		attribute.Int("pricing.fragments", len(search.SplitFragments(text))),
		attribute.Int("pricing.matches", len(items)),
	)
	outcome := observability.OutcomeOK
	if !q.Found() {
		outcome = observability.OutcomeNotFound
	}
	observability.PricingLookups.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("pricing.outcome", outcome))
	return q
}
