// Command server runs the presence tracking bot: the Telegram long-poll loop,
// the background refresh driver, and the HTTP API (webhook plus read
// endpoints) in one process.
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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/tbourn/go-presence-bot/internal/bot"
	"github.com/tbourn/go-presence-bot/internal/config"
	httpapi "github.com/tbourn/go-presence-bot/internal/http"
	"github.com/tbourn/go-presence-bot/internal/observability"
	"github.com/tbourn/go-presence-bot/internal/presenter"
	"github.com/tbourn/go-presence-bot/internal/repo"
	"github.com/tbourn/go-presence-bot/internal/services"
	"github.com/tbourn/go-presence-bot/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title        Presence Tracker API
// @version      1.0
// @description  Webhook and read endpoints of the presence tracking bot.
// @BasePath     /
func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	api, err := bot.Connect(cfg.Bot.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("bot connection failed")
	}
	messenger := bot.NewTelegramMessenger(api)

	store := repo.Store{}
	dirty := services.NewChatDirtyTracker()
	removals := services.NewRemovalScheduler()
	present := presenter.New(cfg.Location(), language.English)
	svc := services.NewStatusService(db, store, dirty)
	pinned := services.NewPinnedSynchronizer(db, store, messenger, present,
		log.With().Str("component", "pinned_sync").Logger())

	driver := &services.Driver{
		Tracker:   dirty,
		Removals:  removals,
		Sync:      pinned,
		Messenger: messenger,
		Interval:  cfg.RefreshInterval,
		Log:       log.With().Str("component", "driver").Logger(),
	}

	dispatcher := &bot.Dispatcher{
		Statuses:     svc,
		Anchor:       pinned,
		Removals:     removals,
		Messenger:    messenger,
		Keyboard:     messenger,
		Present:      present,
		WebhookBase:  cfg.WebhookBaseURL,
		RemovalDelay: cfg.RemovalDelay,
		Log:          log.With().Str("component", "dispatcher").Logger(),
	}
	runner := &bot.Runner{
		API:         api,
		Dispatch:    dispatcher,
		Log:         log.With().Str("component", "runner").Logger(),
		PollTimeout: cfg.Bot.PollTimeout,
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, svc, present, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 3)
	go func() { errCh <- driver.Run(ctx) }()
	go func() { errCh <- runner.Run(ctx) }()
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("component failed")
		}
		stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	log.Info().Msg("bye")
}
