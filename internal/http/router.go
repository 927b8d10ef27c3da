// Package httpapi wires the optional admin HTTP API (Gin): health, metrics,
// Swagger UI and the authenticated ledger and catalog endpoints.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/elix-bot/internal/config"
	"github.com/tbourn/elix-bot/internal/docs"
	"github.com/tbourn/elix-bot/internal/domain"
	"github.com/tbourn/elix-bot/internal/http/handlers"
	"github.com/tbourn/elix-bot/internal/http/middleware"
	"github.com/tbourn/elix-bot/internal/repo"
)

// ledgerStatsShim adapts the repo aggregate queries to handlers.LedgerStats.
type ledgerStatsShim struct{ db *gorm.DB }

// Stats proxies repo.RequestsStats.
func (s ledgerStatsShim) Stats(ctx context.Context, status domain.RequestStatus) (domain.LedgerStamp, error) {
	return repo.RequestsStats(ctx, s.db, status)
}

// Breakdown proxies repo.StatusBreakdown.
func (s ledgerStatsShim) Breakdown(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	return repo.StatusBreakdown(ctx, s.db)
}

// Deps are the services behind the admin API.
type Deps struct {
	// DB enables ETags and /requests/stats; optional.
	DB      *gorm.DB
	Ledger  handlers.LedgerService
	Pricing handlers.PricingService
	Catalog handlers.Catalog
	IsAdmin func(id int64) bool
}

// RegisterRoutes installs middleware and routes on r.
//
// Global order: otelgin, RequestID, RedactingLogger, Recovery, body limit,
// Metrics, gzip, CORS, SecurityHeaders. The API group then authenticates
// the admin before rate limiting, so buckets are per admin.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderAdminID},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(64 << 10))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var stats handlers.LedgerStats
	if d.DB != nil {
		stats = ledgerStatsShim{db: d.DB}
	}
	h := handlers.New(d.Ledger, stats, d.Pricing, d.Catalog)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.RequireAdmin(cfg.Admin.APIToken, d.IsAdmin))
	api.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAdminOrIP()).Handler())
	{
		api.GET("/requests", h.ListRequests)
		api.GET("/requests/stats", h.RequestStats)
		api.GET("/requests/:id", h.GetRequest)
		api.PATCH("/requests/:id/status", h.UpdateRequestStatus)

		api.GET("/catalog", h.ListCatalog)
		api.GET("/catalog/quote", h.QuoteCatalog)
	}
}

// corsMiddleware allows every origin when none are configured, otherwise
// only the listed ones. Credentials are never allowed.
func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderAdminID},
		ExposeHeaders: []string{"X-Request-ID", "ETag", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// limitBody caps request bodies at maxBytes.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix treats "" and "/" as the root group.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// NewServer builds the http.Server for r from cfg's address and timeouts.
func NewServer(r http.Handler, cfg config.Config) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPHost, cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
