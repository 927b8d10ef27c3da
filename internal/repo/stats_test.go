package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/elix-bot/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedRequests(t *testing.T, db *gorm.DB, statuses ...domain.RequestStatus) []*domain.Request {
	t.Helper()
	out := make([]*domain.Request, 0, len(statuses))
	base := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	for i, st := range statuses {
		r, err := CreateRequest(context.Background(), db, int64(100+i), fmt.Sprintf("user %d, 01.01.1990, +7999", i), base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		if st != domain.StatusNew {
			if err := UpdateRequestStatus(context.Background(), db, r.ID, st); err != nil {
				t.Fatalf("seed status %d: %v", i, err)
			}
			r.Status = st
		}
		out = append(out, r)
	}
	return out
}

func TestRequestsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := RequestsStats(context.Background(), db, ""); err == nil {
		t.Fatalf("expected error due to missing requests table")
	}
}

func TestRequestsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Request{})
	got, err := RequestsStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("RequestsStats error: %v", err)
	}
	if got != (domain.LedgerStamp{}) {
		t.Fatalf("expected zero stamp, got %+v", got)
	}
}

func TestRequestsStats_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Request{})
	rs := seedRequests(t, db, domain.StatusNew, domain.StatusClosed, domain.StatusNew)

	all, err := RequestsStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if all.Count != 3 || all.MaxID != rs[2].ID || all.Versions != 1 || all.LastUpdate.IsZero() {
		t.Fatalf("all: got %+v; want count 3, max %d, versions 1", all, rs[2].ID)
	}

	closed, err := RequestsStats(context.Background(), db, domain.StatusClosed)
	if err != nil {
		t.Fatalf("RequestsStats closed: %v", err)
	}
	if closed.Count != 1 || closed.MaxID != rs[1].ID || closed.Versions != 1 {
		t.Fatalf("closed: got %+v; want (1,%d,1)", closed, rs[1].ID)
	}
}

func TestRequestsStats_StatusChangeAltersStamp(t *testing.T) {
	db := newTestDB(t, &domain.Request{})
	rs := seedRequests(t, db, domain.StatusNew, domain.StatusNew)
	ctx := context.Background()

	before, err := RequestsStats(ctx, db, "")
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if err := UpdateRequestStatus(ctx, db, rs[0].ID, domain.StatusClosed); err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	after, err := RequestsStats(ctx, db, "")
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if after.Count != before.Count || after.MaxID != before.MaxID {
		t.Fatalf("count/max must not move: %+v -> %+v", before, after)
	}
	if after == before || after.Versions != before.Versions+1 {
		t.Fatalf("stamp did not change after a status change: %+v -> %+v", before, after)
	}
}

func TestRequestsStats_RowsWithoutUpdatedAt(t *testing.T) {
	db := newTestDB(t, &domain.Request{})
	if err := db.Exec(`INSERT INTO requests (user_id, data, "timestamp") VALUES (?, ?, ?)`,
		int64(1), "a, b, c", time.Now().UTC()).Error; err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	got, err := RequestsStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("RequestsStats: %v", err)
	}
	if got.Count != 1 || !got.LastUpdate.IsZero() {
		t.Fatalf("got %+v", got)
	}
}

func TestStatusBreakdown(t *testing.T) {
	db := newTestDB(t, &domain.Request{})
	seedRequests(t, db, domain.StatusNew, domain.StatusInProgress, domain.StatusNew, domain.StatusClosed)

	got, err := StatusBreakdown(context.Background(), db)
	if err != nil {
		t.Fatalf("StatusBreakdown: %v", err)
	}
	if got[domain.StatusNew] != 2 || got[domain.StatusInProgress] != 1 || got[domain.StatusClosed] != 1 {
		t.Fatalf("unexpected breakdown: %#v", got)
	}
}
