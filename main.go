package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/config"
	"github.com/medverify/medverify-api/gateway"
	"github.com/medverify/medverify-api/handlers"
	"github.com/medverify/medverify-api/interfaces"
	"github.com/medverify/medverify-api/logging"
	"github.com/medverify/medverify-api/scheduler"
	"github.com/medverify/medverify-api/server"
	"github.com/medverify/medverify-api/validation"
	"github.com/medverify/medverify-api/verification"
)

func main() {
	// Load the env file; when run from elsewhere, retry from the executable's
	// directory so systemd-style setups keep working
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			if chErr := os.Chdir(filepath.Dir(ex)); chErr == nil {
				godotenv.Load()
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	logging.Info("Starting medicine verification API",
		"env", cfg.Env,
		"catalog_source", cfg.CatalogSource)

	// Wire the dependency graph
	store := catalog.NewContainer()
	store.SetServerStartTime(time.Now())
	reader := catalog.NewReader(store)
	importer := catalog.NewImporter(cfg.CatalogSource)
	resolver := verification.NewResolver(reader, cfg.LookupTimeout)
	validator := validation.NewValidator()

	var gw interfaces.TextGateway
	if cfg.AIGatewayKey != "" {
		gw = gateway.NewClient(cfg.AIGatewayKey, cfg.AIGatewayURL, cfg.AIModel)
		logging.Info("OCR gateway enabled", "model", cfg.AIModel)
	} else {
		logging.Warn("AI_GATEWAY_KEY not set, OCR verification is disabled")
	}

	sched := scheduler.NewScheduler(store, importer)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	handler := handlers.NewHandler(store, reader, resolver, gw, validator)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
