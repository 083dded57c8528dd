package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect"
	"github.com/nimbushare/openidconnect/api"
	"github.com/nimbushare/openidconnect/audit"
	"github.com/nimbushare/openidconnect/config"
	"github.com/nimbushare/openidconnect/logger"
	"github.com/nimbushare/openidconnect/persistence"
	"github.com/nimbushare/openidconnect/provider"
	"github.com/nimbushare/openidconnect/random"
	"github.com/nimbushare/openidconnect/session"
)

const sessionExpiry = 24 * time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting Nimbushare OpenID Connect Service",
		zap.Int("port", cfg.Port),
		zap.String("issuer", cfg.Provider.Issuer),
	)

	repo, err := persistence.NewRepository(cfg.DBType, cfg.DSN, cfg.SkipAutoMigrate)
	if err != nil {
		zlog.Fatal("failed to initialize repository", zap.Error(err))
	}

	client, err := provider.NewClient(context.Background(), cfg.Provider, zlog)
	if err != nil {
		zlog.Fatal("failed to discover identity provider", zap.Error(err))
	}

	routes := api.NewRoutes(cfg.BaseURL)
	resolver := openidconnect.NewDefaultResolver(cfg, repo, routes, zlog)

	h := api.NewHandler(api.Deps{
		Resolver: resolver,
		Client:   client,
		Sessions: session.NewHS256Strategy(cfg.SessionSecret, sessionExpiry),
		Limiter:  openidconnect.NewDefaultLimiter(cfg.RedisAddr),
		Audit:    audit.NewRecorder(repo, zlog),
		Routes:   routes,
		Random:   random.Generator{},
		Provider: cfg.Provider,
		Logger:   zlog,
	})

	// Setup Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	g := e.Group("")
	h.RegisterRoutes(g)

	zlog.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		zlog.Fatal("server failed to start", zap.Error(err))
	}
}
