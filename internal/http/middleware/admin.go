package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAdminID carries the caller's Telegram user id.
const HeaderAdminID = "X-Admin-ID"

const adminIDKey = "adminID"

// RequireAdmin authenticates the shared API token sent as
// "Authorization: Bearer <token>" and then the caller's X-Admin-ID.
// A missing or wrong token, or a missing or malformed id, is 401; an id
// off the allow-list is 403. An empty token rejects every request.
// Accepted ids are stored for AdminIDFrom and the rate limiter key.
func RequireAdmin(token string, isAdmin func(id int64) bool) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
			LoggerFrom(c).Warn().Msg("admin_token_rejected")
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "valid bearer token required")
			return
		}

		raw := strings.TrimSpace(c.GetHeader(HeaderAdminID))
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "X-Admin-ID header required")
			return
		}
		if isAdmin == nil || !isAdmin(id) {
			LoggerFrom(c).Warn().Int64("admin_id", id).Msg("admin_rejected")
			abortJSON(c, http.StatusForbidden, "forbidden", "not an administrator")
			return
		}
		c.Set(adminIDKey, id)
		c.Next()
	}
}

// AdminIDFrom returns the id accepted by RequireAdmin.
func AdminIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(adminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
