package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not
// on messages.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	ErrCodeInvalidStatus = "invalid_status"
	ErrCodeListFailed    = "list_failed"
	ErrCodeUpdateFailed  = "update_failed"
)
