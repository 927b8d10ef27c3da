// Package repo implements the data persistence layer for the request ledger,
// backed by GORM. This file provides repository functions for the Request
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside transactions. They follow the "thin repository" approach: no
// business rules, only persistence and query composition.
//
// Error semantics:
//   - When a request is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - Other DB errors are propagated unchanged; the service layer decides
//     whether they are retryable.
//
// Identifiers are assigned by the database (INTEGER PRIMARY KEY AUTOINCREMENT
// on SQLite, a sequence on Postgres), which keeps them strictly increasing
// and never reused across restarts.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/elix-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRequest appends a request with status "new" stamped at now (UTC).
// The returned record carries the database-assigned ID.
func CreateRequest(ctx context.Context, db *gorm.DB, userID int64, data string, now time.Time) (*domain.Request, error) {
	created := now.UTC()
	r := &domain.Request{
		UserID:    userID,
		Data:      data,
		CreatedAt: created,
		UpdatedAt: &created,
		Status:    domain.StatusNew,
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a request by id.
func GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.Request, error) {
	var r domain.Request
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRequests returns the number of requests, optionally filtered by
// status (empty status means all).
func CountRequests(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Request{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListRequestsPage returns a page of requests, newest first (id DESC),
// optionally filtered by status.
func ListRequestsPage(ctx context.Context, db *gorm.DB, status domain.RequestStatus, offset, limit int) ([]domain.Request, error) {
	var out []domain.Request
	q := db.WithContext(ctx).Order("id DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateRequestStatus sets the status of request id, stamps updated_at and
// bumps version. It returns ErrNotFound when no row matched.
func UpdateRequestStatus(ctx context.Context, db *gorm.DB, id uint64, status domain.RequestStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
