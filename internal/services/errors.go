// Package services holds the business logic behind the bot flows and the
// admin API: the request ledger, price quotes, the AI assistant and admin
// notifications. This file centralizes service-level error values so that
// callers can map them to bot replies or HTTP statuses consistently.
package services

import "errors"

// Ledger errors.
var (
	// ErrEmptyData is returned when a submission has no text after trimming.
	ErrEmptyData = errors.New("request data is empty")

	// ErrInvalidStatus is returned for status values outside
	// new/in_progress/closed.
	ErrInvalidStatus = errors.New("invalid request status")

	// ErrRequestNotFound indicates that no request has the given id.
	ErrRequestNotFound = errors.New("request not found")

	// ErrPersistence wraps storage failures that survived the retry policy.
	// The user must be told the request was not saved.
	ErrPersistence = errors.New("request could not be saved")
)
