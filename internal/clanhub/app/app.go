package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/squadcommunity/clanhub/internal/clanhub/discord"
	httpapi "github.com/squadcommunity/clanhub/internal/clanhub/http"
	"github.com/squadcommunity/clanhub/internal/clanhub/service"
	"github.com/squadcommunity/clanhub/internal/clanhub/steam"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/internal/clanhub/store/drivers/sqlite"
	"github.com/squadcommunity/clanhub/pkg/slogx"
	"github.com/squadcommunity/clanhub/pkg/tokenx"
)

// BuildVersion is stamped at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application encapsulates the clan hub service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService         *service.AuthService
	playerService       *service.PlayerService
	clanService         *service.ClanService
	membershipService   *service.MembershipService
	oauthStateService   *service.OAuthStateService
	presenceService     *service.PresenceService
	housekeepingService *service.HousekeepingService

	steamClient   *steam.Client
	discordClient *discord.Client

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("CLANHUB_TOKEN_SECRET must be set")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clanhub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("clanhub starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down clanhub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("clanhub stopped")
	return nil
}

// sqliteDSN builds the file DSN with the pragma syntax modernc.org/sqlite
// understands; the mattn-style _busy_timeout params are silently ignored.
func sqliteDSN(file string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqliteDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.steamClient = steam.NewClient(app.cfg.SteamAPIKey)
	app.discordClient = discord.NewClient(
		app.cfg.DiscordClientID,
		app.cfg.DiscordClientSecret,
		app.cfg.BaseURL+"/api/auth/discord/callback",
	)

	app.authService = &service.AuthService{
		Codec: &tokenx.Codec{
			Secret: []byte(app.cfg.TokenSecret),
			Issuer: app.cfg.Issuer,
			TTL:    app.cfg.AccessTTL,
		},
		Store:      app.db,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.playerService = &service.PlayerService{Store: app.db}
	app.clanService = &service.ClanService{Store: app.db}
	app.membershipService = &service.MembershipService{Store: app.db}
	app.oauthStateService = &service.OAuthStateService{
		Store:          app.db,
		StateTTL:       app.cfg.StateTTL,
		AllowedOrigins: app.cfg.AllowedOrigins,
	}
	app.presenceService = service.NewPresenceService(app.steamClient, app.cfg.PresenceTTL)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.RouterConfig{
		BuildVersion: BuildVersion,
		BaseURL:      app.cfg.BaseURL,
		FrontendURL:  app.cfg.FrontendURL,
	}, app.db, app.logger)

	router.AuthService = app.authService
	router.PlayerService = app.playerService
	router.ClanService = app.clanService
	router.MembershipService = app.membershipService
	router.OAuthStateService = app.oauthStateService
	router.PresenceService = app.presenceService
	router.SteamClient = app.steamClient
	router.DiscordClient = app.discordClient
	router.ApplyRoutes(app.cfg.AdminSteamIDs)

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
