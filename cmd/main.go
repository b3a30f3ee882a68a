package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/vicinity/internal/config"
	"github.com/UnknownOlympus/vicinity/internal/geocoding"
	"github.com/UnknownOlympus/vicinity/internal/metrics"
	"github.com/UnknownOlympus/vicinity/internal/places"
	"github.com/UnknownOlympus/vicinity/internal/presenter"
	"github.com/UnknownOlympus/vicinity/internal/repository"
	"github.com/UnknownOlympus/vicinity/internal/search"
	"github.com/UnknownOlympus/vicinity/internal/server"
	"github.com/UnknownOlympus/vicinity/internal/service"
	"github.com/UnknownOlympus/vicinity/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// One maps client serves places and, when selected, geocoding.
	mapsClient, err := places.NewGoogleClient(places.ClientConfig{APIKey: cfg.APIKey, RateLimit: cfg.RateLimit})
	if err != nil {
		log.Fatalf("Failed to create maps client: %v", err)
	}
	placesProvider := places.NewGoogleProvider(mapsClient, cfg.Country, cfg.Language, logger)

	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:     geocoding.ProviderType(cfg.GeocoderType),
		Client:   mapsClient,
		Country:  cfg.Country,
		Language: cfg.Language,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.GeocoderType)

	deps := session.Deps{
		Log:           logger,
		Searcher:      search.NewOrchestrator(logger, placesProvider, appMetrics, cfg.ProviderTimeout),
		Metrics:       appMetrics,
		DefaultRadius: cfg.DefaultRadius,
	}
	opts := server.Options{
		Log:       logger,
		Locator:   service.NewLocatorService(logger, placesProvider, geoProvider, cfg.GeocoderType, appMetrics, cfg.AddressSuffix),
		Suggester: placesProvider,
		Popups:    presenter.NewPopupRenderer(placesProvider, appMetrics, cfg.ProviderTimeout, logger),
		Gatherer:  reg,
		MapsKey:   cfg.APIKey,
	}

	// Search history is optional.
	if cfg.Database.Enabled() {
		dtb, errDB := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if errDB != nil {
			log.Fatalf("Failed to connect to DB: %v", errDB)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		if errDB = repo.EnsureSchema(ctx); errDB != nil {
			log.Fatalf("Failed to prepare DB schema: %v", errDB)
		}

		deps.History = repo
		opts.History = repo
		opts.DB = dtb
		logger.InfoContext(ctx, "Search history enabled", "host", cfg.Database.Host)
	}

	store := session.NewStore(deps, cfg.SessionTTL)
	opts.Sessions = store
	go store.Run(ctx, cfg.SessionTTL/2)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = server.New(opts).Run(ctx, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Server failed", "error", err)
		return
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
