// Package domain defines the core data types of the assistant bot: the
// persisted data-collection requests, the price catalog entries, and the
// ephemeral match results produced by the fuzzy matcher. Request is mapped
// with GORM and forms the persistence layer of the ledger.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle state of a submitted request.
type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusClosed     RequestStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// ParseRequestStatus normalizes user input ("In-Progress", " closed ") into a
// RequestStatus. The second return value is false for unknown statuses.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	st := RequestStatus(s)
	return st, st.Valid()
}

// Request is a data-collection request submitted by a user in the results
// flow. Rows are append-only; only Status changes after insert, and every
// change bumps Version and UpdatedAt.
//
// Fields:
//   - ID: durable auto-increment identifier, never reused.
//   - UserID: Telegram id of the submitting user (indexed).
//   - Data: raw "full name, birth date, phone" text as typed by the user.
//   - CreatedAt: UTC submission time (stored in the "timestamp" column).
//   - UpdatedAt: UTC time of the last write; nil for rows predating the column.
//   - Status: new | in_progress | closed, defaults to new.
//   - Version: number of status changes.
type Request struct {
	ID        uint64        `json:"id"                   gorm:"primaryKey;autoIncrement"`
	UserID    int64         `json:"user_id"              gorm:"not null;index:idx_requests_user"`
	Data      string        `json:"data"                 gorm:"type:text;not null"`
	CreatedAt time.Time     `json:"created_at"           gorm:"column:timestamp;not null"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty" gorm:"column:updated_at"`
	Status    RequestStatus `json:"status"               gorm:"type:varchar(16);not null;default:'new';check:status IN ('new','in_progress','closed')"`
	Version   uint64        `json:"version"              gorm:"not null;default:0"`
}

// LedgerStamp summarises a (possibly status-filtered) view of the ledger.
// Any insert or status change alters at least one field, so it can serve
// as a cache validator.
type LedgerStamp struct {
	Count      int64
	MaxID      uint64
	Versions   uint64    // sum of Version over the view
	LastUpdate time.Time // latest UpdatedAt in the view, zero if none
}

// TableName returns the database table name for Request.
func (Request) TableName() string { return "requests" }

// CatalogEntry is one purchasable diagnostic test with its canonical name
// and price. Entries are immutable once loaded.
type CatalogEntry struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MatchResult pairs one user-supplied fragment with the catalog entry it
// resolved to and the similarity score (0..100) of that resolution.
type MatchResult struct {
	Fragment string       `json:"fragment"`
	Entry    CatalogEntry `json:"entry"`
	Score    int          `json:"score"`
}
