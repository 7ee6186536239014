// Command server runs the Shopify→Slack order notifier.
//
// It loads configuration from the environment (optionally via .env),
// configures structured logging and tracing, selects the tracking-store
// backend, wires the locate/dispatch pipeline, and serves the webhook
// ingress with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-shopify-slack-notifier/internal/config"
	httpapi "github.com/tbourn/go-shopify-slack-notifier/internal/http"
	"github.com/tbourn/go-shopify-slack-notifier/internal/observability"
	"github.com/tbourn/go-shopify-slack-notifier/internal/repo"
	"github.com/tbourn/go-shopify-slack-notifier/internal/services"
	"github.com/tbourn/go-shopify-slack-notifier/internal/shopify"
	"github.com/tbourn/go-shopify-slack-notifier/internal/slackapi"
	"github.com/tbourn/go-shopify-slack-notifier/internal/store"
	"github.com/tbourn/go-shopify-slack-notifier/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.MustLoad()

	// Logging: pretty console in dev, JSON lines otherwise.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op when disabled).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Tracking store backend.
	var st store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		db, err := repo.OpenSQLite(cfg.Store.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.DBPath).Msg("open sqlite")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate sqlite")
		}
		st = store.NewDurable(db)
		log.Info().Str("path", cfg.Store.DBPath).Msg("tracking store: sqlite")
	default:
		st = store.NewMemory()
		log.Info().Msg("tracking store: memory (mappings reset on restart)")
	}

	// Slack boundary.
	if cfg.Slack.BotToken == "" {
		log.Warn().Msg("SLACK_BOT_TOKEN is empty; Slack calls will fail until it is set")
	}
	messenger := slackapi.New(cfg.Slack.BotToken, cfg.Slack.APITimeout)

	locator := &services.Locator{
		Messenger: messenger,
		Channels:  cfg.Slack.ChannelIDs,
		Limit:     cfg.Slack.HistoryLimit,
	}

	dispatcher := services.NewDispatcher(st, locator, messenger)
	dispatcher.AnnounceMode = cfg.AnnounceMode

	// Optional stock side query.
	if cfg.Shopify.StockEnabled() {
		stock, err := shopify.NewStockClient(
			cfg.Shopify.APIKey, cfg.Shopify.WebhookSecret,
			cfg.Shopify.ShopName, cfg.Shopify.APIToken,
			cfg.Shopify.StockNamespace, cfg.Shopify.StockKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("shopify stock client")
		}
		dispatcher.Stock = stock
		log.Info().
			Str("namespace", cfg.Shopify.StockNamespace).
			Str("key", cfg.Shopify.StockKey).
			Msg("stock domain enabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("announce_mode", cfg.AnnounceMode).
			Strs("channels", cfg.Slack.ChannelIDs).
			Str("version", version).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
