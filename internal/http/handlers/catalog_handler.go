package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/services"
)

// PricingService quotes comma-separated test lists.
type PricingService interface {
	Quote(ctx context.Context, text string) services.Quote
}

// Catalog exposes the loaded price list.
type Catalog interface {
	Entries() []domain.CatalogEntry
}

// CatalogResponse lists the catalog in file order.
type CatalogResponse struct {
	Count   int                   `json:"count"`
	Entries []domain.CatalogEntry `json:"entries"`
}

// QuoteItem is one resolved fragment.
type QuoteItem struct {
	Fragment string          `json:"fragment" example:"оак"`
	Name     string          `json:"name"     example:"ОАК"`
	Price    decimal.Decimal `json:"price"    swaggertype:"string" example:"300"`
	Score    int             `json:"score"    example:"100"`
}

// QuoteResponse mirrors what the bot would answer.
type QuoteResponse struct {
	Found bool            `json:"found"`
	Items []QuoteItem     `json:"items"`
	Total decimal.Decimal `json:"total" swaggertype:"string" example:"550"`
}

// ListCatalog godoc
// @ID          listCatalog
// @Summary     List the price catalog
// @Tags        Catalog
// @Produce     json
// @Security    BearerAuth && AdminID
// @Success     200  {object} handlers.CatalogResponse
// @Router      /catalog [get]
func (h *Handlers) ListCatalog(c *gin.Context) {
	entries := h.catalog.Entries()
	ok(c, http.StatusOK, CatalogResponse{Count: len(entries), Entries: entries})
}

// QuoteCatalog godoc
// @ID          quoteCatalog
// @Summary     Price a comma-separated list of tests
// @Description Runs the same fuzzy matching as the bot. Unmatched fragments are dropped; repeated fragments are charged each time.
// @Tags        Catalog
// @Produce     json
// @Security    BearerAuth && AdminID
// @Param       q    query  string  true  "Test names, comma-separated"  example(ОАК, ТТГ)
// @Success     200  {object} handlers.QuoteResponse
// @Failure     400  {object} handlers.ErrorResponse
// @Router      /catalog/quote [get]
func (h *Handlers) QuoteCatalog(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	quote := h.pricing.Quote(c.Request.Context(), q)
	resp := QuoteResponse{Found: quote.Found(), Items: make([]QuoteItem, 0, len(quote.Items)), Total: quote.Total}
	for _, it := range quote.Items {
		resp.Items = append(resp.Items, QuoteItem{
			Fragment: it.Fragment,
			Name:     it.Entry.Name,
			Price:    it.Entry.Price,
			Score:    it.Score,
		})
	}
	ok(c, http.StatusOK, resp)
}
