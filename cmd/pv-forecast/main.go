package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/b0d/pv-forecast/internal/adapters"
	"github.com/b0d/pv-forecast/internal/catalog"
	"github.com/b0d/pv-forecast/internal/config"
	"github.com/b0d/pv-forecast/internal/domain"
	"github.com/b0d/pv-forecast/internal/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config/application.properties", "Path to configuration file")
	listenAddr := flag.String("listen", "", "HTTP listen address (overrides config)")
	once := flag.Bool("once", false, "Run the pipeline once, write CSV to stdout and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Optional .env for local overrides; missing file is fine
	_ = godotenv.Load()

	logger, err := adapters.NewZapLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Next-day PV forecast tool started", "version", version)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err.Error())
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	logger.Info("Configuration loaded",
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude,
		"timezone", cfg.Timezone,
		"module", cfg.ModuleID,
		"inverter", cfg.InverterID,
	)

	cat, err := catalog.Default()
	if err != nil {
		logger.Error("Failed to load equipment catalog", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("Equipment catalog loaded",
		"modules", len(cat.ModuleIDs()),
		"inverters", len(cat.InverterIDs()),
	)

	provider := adapters.NewOpenMeteoProvider(time.Duration(cfg.APITimeoutSeconds)*time.Second, logger)
	service := domain.NewForecastService(provider, cat, logger)

	if *once {
		runOnce(service, cfg, logger)
		return
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(service, cat, cfg, logger).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err.Error())
	}
}

// runOnce executes a single forecast for the configured plant and writes
// the hourly energy CSV to stdout.
func runOnce(service *domain.ForecastService, cfg *config.Config, logger domain.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := service.Run(ctx, cfg.PlantConfiguration(), cfg.Timezone)
	if result.Diagnostic != "" {
		logger.Warn("Forecast returned empty result", "diagnostic", result.Diagnostic)
	}
	logger.Info("Forecast complete", "hours", len(result.Hours), "daily_energy_kwh", result.DailyEnergyKWh)

	if err := result.WriteCSV(os.Stdout); err != nil {
		logger.Error("Failed to write CSV", "error", err.Error())
		os.Exit(1)
	}
}
