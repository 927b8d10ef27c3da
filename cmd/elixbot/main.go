// Command elixbot runs the Elix clinic Telegram bot and, when enabled, its
// admin HTTP API.
//
//	@title						Elix Bot Admin API
//	@version					1.0
//	@description				Request ledger and price catalog administration for the Elix clinic bot.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	AdminID
//	@in							header
//	@name						X-Admin-ID
//	@description				Telegram user id of an allow-listed administrator.
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Shared admin API token, sent as "Bearer <token>".
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/elix-bot/internal/app"
	"github.com/tbourn/elix-bot/internal/config"
	"github.com/tbourn/elix-bot/internal/observability"
	"github.com/tbourn/elix-bot/internal/sysutil"
	"github.com/tbourn/elix-bot/internal/telegram"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	if err := telegram.InstallClientLogger(); err != nil {
		log.Warn().Err(err).Msg("telegram_logger_not_installed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel_setup_failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel_shutdown")
		}
	}()

	api, err := telegram.NewAPI(cfg.Bot.Token, cfg.Bot.APIEndpoint, cfg.Bot.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram_auth_failed")
	}
	log.Info().Str("version", version).Msg("bot_starting")

	a, err := app.New(cfg, api)
	if err != nil {
		log.Fatal().Err(err).Msg("startup_failed")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("db_close")
		}
	}()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("bot_stopped")
		return
	}
	log.Info().Msg("bot_stopped")
}
