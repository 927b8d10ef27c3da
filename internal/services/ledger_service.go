// Package services – LedgerService
//
// LedgerService owns the durable request ledger. Submissions are trimmed,
// stamped and appended with status "new"; identifiers come from the
// database and are strictly increasing across restarts. Transient storage
// failures are retried with exponential backoff before ErrPersistence is
// returned; constraint and schema errors fail on the first attempt.
//
// Observability: public methods are OpenTelemetry-instrumented and
// submissions are counted in elix_ledger_submissions_total.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/observability"
)

// RequestRepo defines the repository contract required by LedgerService.
type RequestRepo interface {
	// CreateRequest appends a request and returns it with its assigned ID.
	CreateRequest(ctx context.Context, db *gorm.DB, userID int64, data string, now time.Time) (*domain.Request, error)

	// GetRequest fetches a request by id.
	GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.Request, error)

	// CountRequests returns the number of requests with status (empty = all).
	CountRequests(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (int64, error)

	// ListRequestsPage returns a page of requests, newest first.
	ListRequestsPage(ctx context.Context, db *gorm.DB, status domain.RequestStatus, offset, limit int) ([]domain.Request, error)

	// UpdateRequestStatus changes the status of one request.
	UpdateRequestStatus(ctx context.Context, db *gorm.DB, id uint64, status domain.RequestStatus) error
}

// LedgerService appends and administers patient requests.
type LedgerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the request repository used by this service.
	Repo RequestRepo

	// MaxTries bounds Submit attempts (including the first).
	MaxTries uint
	// RetryInitial is the first backoff interval.
	RetryInitial time.Duration

	// Now is the clock; tests may replace it.
	Now func() time.Time
}

// NewLedgerService constructs a LedgerService with the default retry policy
// (3 attempts, 100ms initial backoff).
func NewLedgerService(db *gorm.DB, r RequestRepo) *LedgerService {
	return &LedgerService{
		DB:           db,
		Repo:         r,
		MaxTries:     3,
		RetryInitial: 100 * time.Millisecond,
		Now:          time.Now,
	}
}

// Submit appends rawData for userID and returns the stored request.
func (s *LedgerService) Submit(ctx context.Context, userID int64, rawData string) (*domain.Request, error) {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	data := strings.TrimSpace(rawData)
	if data == "" {
		return nil, ErrEmptyData
	}

	attempts := 0
	op := func() (*domain.Request, error) {
		attempts++
		r, err := s.Repo.CreateRequest(ctx, s.DB, userID, data, s.now())
		if err != nil && (ctx.Err() != nil || !isTransient(err)) {
			return nil, backoff.Permanent(err)
		}
		return r, err
	}

	r, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.backOff()),
		backoff.WithMaxTries(max(s.MaxTries, 1)),
	)
	span.SetAttributes(attribute.Int("ledger.attempts", attempts))
	if err != nil {
		observability.LedgerSubmissions.WithLabelValues(observability.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if attempts > 1 {
		observability.LedgerSubmissions.WithLabelValues(observability.OutcomeRetried).Inc()
	} else {
		observability.LedgerSubmissions.WithLabelValues(observability.OutcomeOK).Inc()
	}
	span.SetAttributes(attribute.Int64("request.id", int64(r.ID)))
	return r, nil
}

// ListPage returns a page of requests filtered by status (empty = all),
// newest first, and the total count. It applies defaults for invalid
// page/pageSize.
func (s *LedgerService) ListPage(ctx context.Context, status domain.RequestStatus, page, pageSize int) ([]domain.Request, int64, error) {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("request.status", string(status)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountRequests(ctx, s.DB, status)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Request{}, 0, nil
	}
	items, err := s.Repo.ListRequestsPage(ctx, s.DB, status, offset, pageSize)
	return items, total, err
}

// Get returns one request.
func (s *LedgerService) Get(ctx context.Context, id uint64) (*domain.Request, error) {
	r, err := s.Repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return r, err
}

// UpdateStatus moves request id to status. Any transition between the
// three statuses is allowed; requests are never deleted.
func (s *LedgerService) UpdateStatus(ctx context.Context, id uint64, status domain.RequestStatus) (*domain.Request, error) {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("request.id", int64(id)),
			attribute.String("request.status", string(status)),
		),
	)
	defer span.End()

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.Repo.UpdateRequestStatus(ctx, s.DB, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// permanentStoreErrors are storage failures that a retry cannot fix.
var permanentStoreErrors = []error{
	context.Canceled,
	gorm.ErrInvalidData,
	gorm.ErrInvalidField,
	gorm.ErrInvalidValue,
	gorm.ErrInvalidTransaction,
	gorm.ErrCheckConstraintViolated,
	gorm.ErrDuplicatedKey,
	gorm.ErrForeignKeyViolated,
	gorm.ErrMissingWhereClause,
}

// isTransient reports whether a CreateRequest failure is worth retrying.
// Locks, timeouts and dropped connections are; schema and constraint
// violations are not.
func isTransient(err error) bool {
	for _, target := range permanentStoreErrors {
		if errors.Is(err, target) {
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"constraint", "no such table", "no such column", "does not exist", "syntax error"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

func (s *LedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LedgerService) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if s.RetryInitial > 0 {
		b.InitialInterval = s.RetryInitial
	}
	b.MaxInterval = 2 * time.Second
	return b
}
