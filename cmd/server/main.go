package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rpay/imagegate/internal/admin"
	"github.com/rpay/imagegate/internal/config"
	"github.com/rpay/imagegate/internal/gateway"
	"github.com/rpay/imagegate/internal/metrics"
	"github.com/rpay/imagegate/internal/middleware"
	"github.com/rpay/imagegate/internal/quota"
	"github.com/rpay/imagegate/internal/upstream/render"
	"github.com/rpay/imagegate/internal/usagelog"
)

func main() {
	logger := log.New(os.Stdout, "[imagegate] ", log.LstdFlags|log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Println("Loaded environment from .env")
	}

	logger.Println("Starting imagegate...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Printf("Configuration loaded successfully")
	logger.Printf("Port: %s", cfg.Port)
	logger.Printf("Upstream: %s", cfg.UpstreamURL)
	logger.Printf("Privileged keys configured: %d", len(cfg.APIKeys))
	logger.Printf("Caps: free %d/day %d/month, paid %d/month",
		cfg.StandardDaily, cfg.StandardMonthly, cfg.PrivilegedMonthly)

	ledger := quota.NewLedger()
	controller := quota.NewController(ledger, quota.Limits{
		StandardDaily:     cfg.StandardDaily,
		StandardMonthly:   cfg.StandardMonthly,
		PrivilegedMonthly: cfg.PrivilegedMonthly,
	})

	sweeper := quota.NewSweeper(ledger, cfg.SweepInterval, logger)
	sweeper.Start()

	var store *usagelog.Store
	var committer *usagelog.Committer
	if cfg.UsageDBPath != "" {
		store, err = usagelog.Open(cfg.UsageDBPath)
		if err != nil {
			logger.Fatalf("Failed to open usage log: %v", err)
		}
		defer store.Close()
		committer = usagelog.NewCommitter(store, logger)
		logger.Printf("Usage log: %s", cfg.UsageDBPath)
	} else {
		logger.Println("Usage log disabled")
	}

	gatewayMetrics := metrics.New()
	renderer := render.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
	identity := middleware.NewIdentity(cfg.APIKeys)
	logging := middleware.NewLogging(logger)
	handler := gateway.NewHandler(controller, renderer, committer, gatewayMetrics, logger, cfg.PromptStyleSuffix)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gateway.HealthCheck)
	mux.Handle("/metrics", gatewayMetrics.Handler())

	generate := logging.LogRequest(identity.Resolve(http.HandlerFunc(handler.HandleGenerate)))
	mux.Handle("/generate", generate)
	mux.Handle("/generate/", generate)

	if cfg.AdminSecret != "" {
		adminHandler := admin.NewHandler(ledger, store, cfg.AdminSecret)
		mux.Handle("/admin/usage", logging.LogRequest(http.HandlerFunc(adminHandler.Usage)))
		mux.Handle("/admin/requests", logging.LogRequest(http.HandlerFunc(adminHandler.Requests)))
		mux.Handle("/admin/keys", logging.LogRequest(http.HandlerFunc(adminHandler.CreateKey)))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("Server listening on http://0.0.0.0:%s", cfg.Port)
		logger.Println("Routes:")
		logger.Println("  GET  /health              - Health check")
		logger.Println("  GET  /metrics             - Gateway statistics")
		logger.Println("  GET  /generate/{prompt}   - Render an image (prompt in URL)")
		logger.Println("  POST /generate            - Render an image (JSON body)")
		if cfg.AdminSecret != "" {
			logger.Println("  GET  /admin/usage         - Usage snapshot (x-admin-secret required)")
			logger.Println("  GET  /admin/requests      - Recent audit log entries (x-admin-secret required)")
			logger.Println("  POST /admin/keys          - Mint an API key (x-admin-secret required)")
		}
		logger.Println("Press Ctrl+C to stop...")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}
	logger.Println("Server stopped gracefully")
}
