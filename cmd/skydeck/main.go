package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/skydeck/skydeck/internal/api/http"
	"github.com/skydeck/skydeck/internal/config"
	"github.com/skydeck/skydeck/internal/gateway"
	"github.com/skydeck/skydeck/internal/scheduler"
	"github.com/skydeck/skydeck/internal/state"
	"github.com/skydeck/skydeck/internal/storage"
	"github.com/skydeck/skydeck/internal/syncer"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Durable key/value store behind the containers.
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	gw := gateway.New(gateway.Options{
		Client:        httpClient,
		WeatherAPIKey: cfg.WeatherAPIKey,
		GeoUsername:   cfg.GeoUsername,
		FetchDelay:    cfg.FetchDelay,
	})

	// Domain state containers, each mirrored to the store.
	weatherState := state.NewWeather(store, gw)
	favorites := state.NewFavorites(store)
	notes := state.NewNotes(store)
	location := state.NewLocation(store, gw, gw, cfg.LocationTimeout)

	online := syncer.DialProbe(cfg.ProbeAddr, 2*time.Second)
	policy := syncer.New(
		weatherState, favorites, notes, location,
		store, gw, online,
		cfg.DefaultPlaces, cfg.FreshnessMaxAge,
	)

	// Startup sync: hydrate, then fetch only when online, stale, and
	// empty. Runs in the background so the server comes up immediately
	// on cached data.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		policy.Run(ctx)
	}()

	// Periodic re-check; the policy gates itself.
	sched := scheduler.New(policy, cfg.ResyncInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skydeck",
		DisableStartupMessage: true,
		ReadTimeout:  10 * time.Second,
		// Refresh-all walks the whole collection with a fixed pause
		// between requests, so responses can take a while.
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skydeck",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:   weatherState,
		Favorites: favorites,
		Notes:     notes,
		Location:  location,
		Sync:      policy,
		Gateway:   gw,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
