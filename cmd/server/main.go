// Command server runs the chat authorization and lock service.
//
// Startup order: environment (.env optional), config, logger, database,
// tracing, dependency wiring, HTTP server. Shutdown drains in-flight
// requests before flushing the trace exporter.
//
// @title        ChatGuard API
// @version      1.0
// @description  Chat-room authorization and lock-back service.
// @BasePath     /api/v1
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
	"github.com/rs/zerolog/log"

	"github.com/vanzoel/chatguard/docs"
	"github.com/vanzoel/chatguard/internal/auth"
	"github.com/vanzoel/chatguard/internal/config"
	httpapi "github.com/vanzoel/chatguard/internal/http"
	"github.com/vanzoel/chatguard/internal/observability"
	"github.com/vanzoel/chatguard/internal/provider"
	"github.com/vanzoel/chatguard/internal/repo"
	"github.com/vanzoel/chatguard/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	log.Info().
		Str("version", version).
		Str("port", cfg.Port).
		Str("db", cfg.DBPath).
		Msg("starting chatguard")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	// The admin-status provider is optional: without a URL every non-static
	// role degrades to User and the engine still enforces lock precedence.
	var adminProvider auth.AdminStatusProvider
	if cfg.Provider.URL != "" {
		adminProvider = provider.New(cfg.Provider.URL, cfg.Provider.Timeout, cfg.Provider.Token)
	} else {
		log.Warn().Msg("no admin-status provider configured; group-admin roles disabled")
	}

	authSvc := auth.NewService(auth.Options{
		OwnerID:              cfg.Auth.OwnerID,
		DeveloperIDs:         cfg.Auth.DeveloperIDs,
		AdminChatIDs:         cfg.Auth.AdminChatIDs,
		EnablePublicCommands: cfg.Auth.EnablePublicCommands,
		Provider:             adminProvider,
		ProviderTimeout:      cfg.Provider.Timeout,
		RoleCacheTTL:         cfg.Auth.RoleCacheTTL,
		AdminCacheTTL:        cfg.Auth.AdminCacheTTL,
		CacheCapacity:        cfg.Auth.CacheMaxEntries,
	})

	engine := httpapi.NewLockEngine(db, authSvc, cfg.LockMaxAge)

	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	docs.SwaggerInfo.Version = version

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, authSvc, engine, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("http server")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}

	log.Info().Msg("stopped")
}
