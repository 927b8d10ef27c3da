package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/repo"
)

// ----- Fake repo -----

type fakeRequestRepo struct {
	// failures before CreateRequest succeeds; -1 fails forever
	createFailures int
	createErr      error
	createCalls    int
	createUserID   int64
	createData     string
	createNow      time.Time
	nextID         uint64

	getReq *domain.Request
	getErr error

	countStatus domain.RequestStatus
	countTotal  int64
	countErr    error

	pageStatus domain.RequestStatus
	pageOffset int
	pageLimit  int
	pageItems  []domain.Request
	pageErr    error

	updateID     uint64
	updateStatus domain.RequestStatus
	updateErr    error
}

func (r *fakeRequestRepo) CreateRequest(ctx context.Context, db *gorm.DB, userID int64, data string, now time.Time) (*domain.Request, error) {
	r.createCalls++
	r.createUserID, r.createData, r.createNow = userID, data, now
	if r.createFailures < 0 || r.createCalls <= r.createFailures {
		if r.createErr != nil {
			return nil, r.createErr
		}
		return nil, errors.New("database is locked")
	}
	r.nextID++
	return &domain.Request{ID: r.nextID, UserID: userID, Data: data, CreatedAt: now.UTC(), Status: domain.StatusNew}, nil
}

func (r *fakeRequestRepo) GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.Request, error) {
	return r.getReq, r.getErr
}

func (r *fakeRequestRepo) CountRequests(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (int64, error) {
	r.countStatus = status
	return r.countTotal, r.countErr
}

func (r *fakeRequestRepo) ListRequestsPage(ctx context.Context, db *gorm.DB, status domain.RequestStatus, offset, limit int) ([]domain.Request, error) {
	r.pageStatus, r.pageOffset, r.pageLimit = status, offset, limit
	return r.pageItems, r.pageErr
}

func (r *fakeRequestRepo) UpdateRequestStatus(ctx context.Context, db *gorm.DB, id uint64, status domain.RequestStatus) error {
	r.updateID, r.updateStatus = id, status
	return r.updateErr
}

// sqliteRepo proxies the repo package free functions.
type sqliteRepo struct{}

func (sqliteRepo) CreateRequest(ctx context.Context, db *gorm.DB, userID int64, data string, now time.Time) (*domain.Request, error) {
	return repo.CreateRequest(ctx, db, userID, data, now)
}
func (sqliteRepo) GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.Request, error) {
	return repo.GetRequest(ctx, db, id)
}
func (sqliteRepo) CountRequests(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (int64, error) {
	return repo.CountRequests(ctx, db, status)
}
func (sqliteRepo) ListRequestsPage(ctx context.Context, db *gorm.DB, status domain.RequestStatus, offset, limit int) ([]domain.Request, error) {
	return repo.ListRequestsPage(ctx, db, status, offset, limit)
}
func (sqliteRepo) UpdateRequestStatus(ctx context.Context, db *gorm.DB, id uint64, status domain.RequestStatus) error {
	return repo.UpdateRequestStatus(ctx, db, id, status)
}

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func fastLedger(db *gorm.DB, r RequestRepo) *LedgerService {
	s := NewLedgerService(db, r)
	s.RetryInitial = time.Millisecond
	return s
}

// ----- Tests -----

func TestNewLedgerService_Defaults(t *testing.T) {
	r := &fakeRequestRepo{}
	s := NewLedgerService(nil, r)
	if s.Repo != r || s.MaxTries != 3 || s.RetryInitial != 100*time.Millisecond || s.Now == nil {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestSubmit_TrimsAndStamps(t *testing.T) {
	r := &fakeRequestRepo{}
	s := fastLedger(nil, r)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return fixed }

	got, err := s.Submit(context.Background(), 42, "  Иванов Иван, 01.01.1990, +79990000000 \n")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.createData != "Иванов Иван, 01.01.1990, +79990000000" || r.createUserID != 42 || !r.createNow.Equal(fixed) {
		t.Fatalf("repo got %q/%d/%v", r.createData, r.createUserID, r.createNow)
	}
	if got.ID != 1 || got.Status != domain.StatusNew {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestSubmit_EmptyData(t *testing.T) {
	r := &fakeRequestRepo{}
	if _, err := fastLedger(nil, r).Submit(context.Background(), 1, " \t "); !errors.Is(err, ErrEmptyData) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
	if r.createCalls != 0 {
		t.Fatalf("repo must not be called for empty data")
	}
}

func TestSubmit_RetriesTransientFailures(t *testing.T) {
	r := &fakeRequestRepo{createFailures: 2}
	got, err := fastLedger(nil, r).Submit(context.Background(), 7, "a, b, c")
	if err != nil {
		t.Fatalf("Submit should succeed on third try: %v", err)
	}
	if r.createCalls != 3 || got == nil {
		t.Fatalf("expected 3 attempts, got %d", r.createCalls)
	}
}

func TestSubmit_GivesUpWithErrPersistence(t *testing.T) {
	r := &fakeRequestRepo{createFailures: -1}
	_, err := fastLedger(nil, r).Submit(context.Background(), 7, "a, b, c")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if r.createCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", r.createCalls)
	}
}

func TestSubmit_CancelledContextStopsRetrying(t *testing.T) {
	r := &fakeRequestRepo{createFailures: -1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fastLedger(nil, r).Submit(ctx, 7, "a, b, c"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if r.createCalls > 1 {
		t.Fatalf("cancelled context must not be retried, got %d calls", r.createCalls)
	}
}

func TestSubmit_PermanentFailuresAreNotRetried(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		attempts int
	}{
		{"invalid data", gorm.ErrInvalidData, 1},
		{"wrapped check constraint", fmt.Errorf("insert: %w", gorm.ErrCheckConstraintViolated), 1},
		{"duplicate key", gorm.ErrDuplicatedKey, 1},
		{"sqlite constraint text", errors.New("CHECK constraint failed: status"), 1},
		{"missing table", errors.New("no such table: requests"), 1},
		{"lock", errors.New("database is locked"), 3},
		{"connection reset", errors.New("read tcp: connection reset by peer"), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeRequestRepo{createFailures: -1, createErr: tc.err}
			_, err := fastLedger(nil, r).Submit(context.Background(), 7, "a, b, c")
			if !errors.Is(err, ErrPersistence) {
				t.Fatalf("expected ErrPersistence, got %v", err)
			}
			if r.createCalls != tc.attempts {
				t.Fatalf("attempts = %d, want %d", r.createCalls, tc.attempts)
			}
		})
	}
}

func TestSubmit_SQLite_SameDataTwiceGetsIncreasingIDs(t *testing.T) {
	db := newLedgerDB(t)
	s := fastLedger(db, sqliteRepo{})

	a, err := s.Submit(context.Background(), 5, "Петров Пётр, 02.02.1980, +79991112233")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	b, err := s.Submit(context.Background(), 5, "Петров Пётр, 02.02.1980, +79991112233")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not strictly increasing: %d then %d", a.ID, b.ID)
	}

	items, total, err := s.ListPage(context.Background(), "", 1, 10)
	if err != nil || total != 2 || len(items) != 2 || items[0].ID != b.ID {
		t.Fatalf("ListPage = %+v, %d, %v", items, total, err)
	}

	upd, err := s.UpdateStatus(context.Background(), a.ID, domain.StatusClosed)
	if err != nil || upd.Status != domain.StatusClosed {
		t.Fatalf("UpdateStatus = %+v, %v", upd, err)
	}
	if _, err := s.UpdateStatus(context.Background(), 999, domain.StatusClosed); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if _, err := s.Get(context.Background(), 999); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound from Get, got %v", err)
	}
}

func TestListPage_DefaultsAndValidation(t *testing.T) {
	r := &fakeRequestRepo{countTotal: 0}
	s := NewLedgerService(nil, r)

	items, total, err := s.ListPage(context.Background(), domain.StatusNew, 0, 0)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("expected empty page, got %v %d %v", items, total, err)
	}
	if r.countStatus != domain.StatusNew {
		t.Fatalf("status filter not forwarded: %q", r.countStatus)
	}

	r.countTotal = 50
	r.pageItems = []domain.Request{{ID: 30}}
	if _, _, err := s.ListPage(context.Background(), "", 3, 10); err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if r.pageOffset != 20 || r.pageLimit != 10 {
		t.Fatalf("offset/limit = %d/%d; want 20/10", r.pageOffset, r.pageLimit)
	}

	if _, _, err := s.ListPage(context.Background(), "archived", 1, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateStatus_InvalidAndRepoError(t *testing.T) {
	r := &fakeRequestRepo{}
	s := NewLedgerService(nil, r)
	if _, err := s.UpdateStatus(context.Background(), 1, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	r.updateErr = errors.New("disk I/O error")
	if _, err := s.UpdateStatus(context.Background(), 1, domain.StatusClosed); err == nil || errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected raw repo error, got %v", err)
	}
	if r.updateID != 1 || r.updateStatus != domain.StatusClosed {
		t.Fatalf("repo got %d/%q", r.updateID, r.updateStatus)
	}
}
