package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/http/middleware"
	"github.com/tbourn/elix-bot/internal/services"
	"github.com/tbourn/elix-bot/internal/utils"
)

// LedgerService is the request ledger as seen by the admin API.
type LedgerService interface {
	ListPage(ctx context.Context, status domain.RequestStatus, page, pageSize int) ([]domain.Request, int64, error)
	Get(ctx context.Context, id uint64) (*domain.Request, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.RequestStatus) (*domain.Request, error)
}

// LedgerStats supplies cheap aggregates for ETags and the stats endpoint.
type LedgerStats interface {
	Stats(ctx context.Context, status domain.RequestStatus) (domain.LedgerStamp, error)
	Breakdown(ctx context.Context) (map[domain.RequestStatus]int64, error)
}

// Handlers groups the admin endpoints.
type Handlers struct {
	ledger  LedgerService
	stats   LedgerStats
	pricing PricingService
	catalog Catalog
}

// New binds handlers to their services. stats may be nil, which disables
// ETags and the stats endpoint.
func New(ledger LedgerService, stats LedgerStats, pricing PricingService, catalog Catalog) *Handlers {
	return &Handlers{ledger: ledger, stats: stats, pricing: pricing, catalog: catalog}
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRequestsResponse is a page of ledger entries, newest first.
type ListRequestsResponse struct {
	Requests   []domain.Request `json:"requests"`
	Pagination Pagination       `json:"pagination"`
}

// UpdateStatusRequest is the body of PATCH /requests/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"in_progress"`
}

// StatsResponse counts requests per status.
type StatsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = max(utils.AtoiDefault(c.Query("page"), 1), 1)
	pageSize = min(max(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1), maxPageSize)
	return page, pageSize
}

func statusFilter(c *gin.Context) (domain.RequestStatus, bool) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return "", true
	}
	return domain.ParseRequestStatus(raw)
}

// ListRequests godoc
// @ID          listRequests
// @Summary     List requests (paginated)
// @Description Returns ledger entries, newest first, optionally filtered by status. Supports a weak ETag via If-None-Match.
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth && AdminID
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       status         query   string  false "Filter by status" Enums(new, in_progress, closed)
// @Param       page           query   int     false "Page number"      minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"   minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListRequestsResponse
// @Header      200  {string} ETag "Weak ETag of the filtered ledger"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse
// @Failure     401  {object} handlers.ErrorResponse
// @Failure     403  {object} handlers.ErrorResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()
	status, valid := statusFilter(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, "status must be one of new, in_progress, closed")
		return
	}
	page, pageSize := clampPagination(c)

	// Inserts move count and max id; status changes move the version sum
	// and the last update time.
	if h.stats != nil {
		if st, err := h.stats.Stats(ctx, status); err == nil {
			var last int64
			if !st.LastUpdate.IsZero() {
				last = st.LastUpdate.UnixNano()
			}
			etag := fmt.Sprintf(`W/"requests:%s:%d:%d:%d:%d:%d:%d"`,
				status, st.Count, st.MaxID, st.Versions, last, page, pageSize)
			c.Header("ETag", etag)
			if c.GetHeader("If-None-Match") == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.ledger.ListPage(ctx, status, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list requests")
		return
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListRequestsResponse{
		Requests: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetRequest godoc
// @ID          getRequest
// @Summary     Get one request
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth && AdminID
// @Param       id   path  int  true  "Request number"  minimum(1)
// @Success     200  {object} domain.Request
// @Failure     400  {object} handlers.ErrorResponse
// @Failure     404  {object} handlers.ErrorResponse
// @Router      /requests/{id} [get]
func (h *Handlers) GetRequest(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	req, err := h.ledger.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load request")
		return
	}
	ok(c, http.StatusOK, req)
}

// UpdateRequestStatus godoc
// @ID          updateRequestStatus
// @Summary     Change a request's status
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth && AdminID
// @Param       id    path  int                           true  "Request number"  minimum(1)
// @Param       body  body  handlers.UpdateStatusRequest  true  "New status"
// @Success     200  {object} domain.Request
// @Failure     400  {object} handlers.ErrorResponse
// @Failure     404  {object} handlers.ErrorResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /requests/{id}/status [patch]
func (h *Handlers) UpdateRequestStatus(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	status, valid := domain.ParseRequestStatus(body.Status)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, "status must be one of new, in_progress, closed")
		return
	}

	req, err := h.ledger.UpdateStatus(c.Request.Context(), id, status)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "could not update request")
		return
	}
	lg := middleware.LoggerFrom(c).Info().Uint64("ledger_id", id).Str("status", string(status))
	if admin, found := middleware.AdminIDFrom(c); found {
		lg = lg.Int64("admin_id", admin)
	}
	lg.Msg("request_status_changed")
	ok(c, http.StatusOK, req)
}

// RequestStats godoc
// @ID          requestStats
// @Summary     Count requests per status
// @Tags        Requests
// @Produce     json
// @Security    BearerAuth && AdminID
// @Success     200  {object} handlers.StatsResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /requests/stats [get]
func (h *Handlers) RequestStats(c *gin.Context) {
	if h.stats == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "stats unavailable")
		return
	}
	by, err := h.stats.Breakdown(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute stats")
		return
	}
	resp := StatsResponse{ByStatus: make(map[string]int64, 3)}
	for _, st := range []domain.RequestStatus{domain.StatusNew, domain.StatusInProgress, domain.StatusClosed} {
		resp.ByStatus[string(st)] = by[st]
		resp.Total += by[st]
	}
	ok(c, http.StatusOK, resp)
}
