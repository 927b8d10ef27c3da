// Package app builds every component once at startup and owns their
// lifecycle: the ledger database, catalog, matcher, services, router,
// Telegram poller and the optional admin HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/elix-bot/internal/ai"
	"github.com/tbourn/elix-bot/internal/catalog"
	"github.com/tbourn/elix-bot/internal/config"
	"github.com/tbourn/elix-bot/internal/domain"
	httpapi "github.com/tbourn/elix-bot/internal/http"
	"github.com/tbourn/elix-bot/internal/repo"
	"github.com/tbourn/elix-bot/internal/router"
	"github.com/tbourn/elix-bot/internal/search"
	"github.com/tbourn/elix-bot/internal/services"
	"github.com/tbourn/elix-bot/internal/telegram"
)

// requestRepoShim adapts the repo free functions to services.RequestRepo.
type requestRepoShim struct{}

func (requestRepoShim) CreateRequest(ctx context.Context, db *gorm.DB, userID int64, data string, now time.Time) (*domain.Request, error) {
	return repo.CreateRequest(ctx, db, userID, data, now)
}

func (requestRepoShim) GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.Request, error) {
	return repo.GetRequest(ctx, db, id)
}

func (requestRepoShim) CountRequests(ctx context.Context, db *gorm.DB, status domain.RequestStatus) (int64, error) {
	return repo.CountRequests(ctx, db, status)
}

func (requestRepoShim) ListRequestsPage(ctx context.Context, db *gorm.DB, status domain.RequestStatus, offset, limit int) ([]domain.Request, error) {
	return repo.ListRequestsPage(ctx, db, status, offset, limit)
}

func (requestRepoShim) UpdateRequestStatus(ctx context.Context, db *gorm.DB, id uint64, status domain.RequestStatus) error {
	return repo.UpdateRequestStatus(ctx, db, id, status)
}

// App is the assembled bot.
type App struct {
	Config  config.Config
	DB      *gorm.DB
	Catalog *catalog.Store
	Ledger  *services.LedgerService
	Router  *router.Router
	Poller  *telegram.Poller
	// HTTP is nil when the admin API is disabled.
	HTTP *http.Server

	// ShutdownTimeout bounds the HTTP server drain.
	ShutdownTimeout time.Duration
}

// New wires the application around an authenticated Bot API client. A
// catalog that cannot be loaded, a ledger that cannot be opened, or an
// admin HTTP API without a token is a startup error.
func New(cfg config.Config, api telegram.API) (*App, error) {
	if cfg.HTTPEnabled && cfg.Admin.APIToken == "" {
		return nil, errors.New("admin http api enabled without ADMIN_API_TOKEN")
	}

	store, rep, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info().
		Str("path", cfg.CatalogPath).
		Int("entries", store.Len()).
		Int("skipped", rep.Skipped).
		Strs("duplicates", rep.Duplicates).
		Msg("catalog_loaded")

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.Path, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = repo.Close(db)
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	matcher := search.NewMatcher(store.Entries(), search.WithThreshold(cfg.MatchThreshold))
	ledger := services.NewLedgerService(db, requestRepoShim{})
	pricing := services.NewPricingService(matcher)
	assistant := services.NewAssistantService(ai.NewOpenAIClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL), cfg.AI.Timeout)

	bot := telegram.NewBot(api, telegram.Keyboards{SupportURL: cfg.Support.URL, SupportLabel: cfg.Support.Label})
	notifier := services.NewNotificationService(bot, cfg.Admin.Channel)

	rt := router.New(ledger, pricing, assistant, notifier, cfg.Admin)
	rt.Location = time.Local

	a := &App{
		Config:          cfg,
		DB:              db,
		Catalog:         store,
		Ledger:          ledger,
		Router:          rt,
		Poller:          telegram.NewPoller(bot, rt, cfg.Bot.PollTimeout, cfg.Bot.SkipPending),
		ShutdownTimeout: 10 * time.Second,
	}

	if cfg.HTTPEnabled {
		gin.SetMode(cfg.GinMode)
		engine := gin.New()
		httpapi.RegisterRoutes(engine, httpapi.Deps{
			DB:      db,
			Ledger:  ledger,
			Pricing: pricing,
			Catalog: store,
			IsAdmin: cfg.Admin.IsAdmin,
		}, cfg)
		a.HTTP = httpapi.NewServer(engine, cfg)
	}
	return a, nil
}

// Run serves until ctx is cancelled or a component fails. The poller and
// the HTTP server stop together.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Poller.Run(ctx)
	})

	if a.HTTP != nil {
		g.Go(func() error {
			log.Info().Str("addr", a.HTTP.Addr).Msg("http_listening")
			if err := a.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
			defer cancel()
			return a.HTTP.Shutdown(sctx)
		})
	}
	return g.Wait()
}

// Close releases the database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return repo.Close(a.DB)
}
