// Package repo implements the data persistence layer for the request ledger,
// backed by GORM. This file provides the aggregate queries used for ETag
// generation and the status breakdown in the admin HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/elix-bot/internal/domain"
)

// RequestsStats summarises the requests matching status (empty means all):
// row count, highest id, sum of versions and the latest update time.
func RequestsStats(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (domain.LedgerStamp, error) {
	scope := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&domain.Request{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var agg struct {
		N        int64
		MaxID    uint64
		Versions uint64
	}
	err := scope().
		Select("COUNT(*) AS n, COALESCE(MAX(id), 0) AS max_id, COALESCE(SUM(version), 0) AS versions").
		Scan(&agg).Error
	if err != nil {
		return domain.LedgerStamp{}, err
	}
	stamp := domain.LedgerStamp{Count: agg.N, MaxID: agg.MaxID, Versions: agg.Versions}
	if agg.N == 0 {
		return stamp, nil
	}

	var last []struct {
		UpdatedAt time.Time
	}
	err = scope().
		Select("updated_at").
		Where("updated_at IS NOT NULL").
		Order("updated_at DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return domain.LedgerStamp{}, err
	}
	if len(last) > 0 {
		stamp.LastUpdate = last[0].UpdatedAt.UTC()
	}
	return stamp, nil
}

// StatusBreakdown returns the number of requests per status.
func StatusBreakdown(ctx context.Context, db *gorm.DB) (map[domain.RequestStatus]int64, error) {
	var rows []struct {
		Status domain.RequestStatus
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Request{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RequestStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
