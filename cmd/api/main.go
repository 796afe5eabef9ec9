package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/vitrine/internal/api/router"
	appconfig "github.com/wolfman30/vitrine/internal/config"
	"github.com/wolfman30/vitrine/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vitrine/internal/http/middleware"
	"github.com/wolfman30/vitrine/internal/notify"
	"github.com/wolfman30/vitrine/internal/observability/metrics"
	"github.com/wolfman30/vitrine/internal/page"
	"github.com/wolfman30/vitrine/internal/site"
	"github.com/wolfman30/vitrine/internal/throttle"
	"github.com/wolfman30/vitrine/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vitrine API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"site_file", cfg.SiteFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storefront, err := site.Load(cfg.SiteFile)
	if err != nil {
		logger.Error("failed to load site", "error", err)
		os.Exit(1)
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsHandler, modalMetrics := setupMetrics()
	app := newApp(cfg, logger, storefront, redisClient, modalMetrics, metricsHandler)
	go app.registry.Run(ctx, 0)
	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler  http.Handler
	registry *page.Registry
	limiter  *httpmiddleware.RateLimiter
	hub      *notify.Hub
}

func newApp(cfg *appconfig.Config, logger *logging.Logger, storefront *site.Site, redisClient *redis.Client, modalMetrics *metrics.ModalMetrics, metricsHandler http.Handler) *app {
	hub := notify.NewHub(logger.Component("toasts"))
	registry := page.NewRegistry(storefront, page.Options{
		ProductsURL:        cfg.ProductsPageURL,
		CurrencySuffix:     cfg.CurrencySuffix,
		DefaultCountryCode: cfg.DefaultCountryCode,
		ProcessingDelay:    cfg.ProcessingDelay,
		FeedbackDelay:      cfg.PaymentFeedbackDelay,
		Location:           cfg.Location(),
		TTL:                cfg.SessionTTL,
		Logger:             logger,
		Metrics:            modalMetrics,
		Notifier: func(sessionID string) notify.Notifier {
			return notify.Multi{hub.ForSession(sessionID), notify.NewLogNotifier(logger, "session_id", sessionID)}
		},
		OnEvict: hub.Forget,
	})

	var guard *throttle.Guard
	if redisClient != nil {
		guard = throttle.NewGuard(redisClient, throttle.Config{
			MaxAttempts: cfg.FloodMaxAttempts,
			Window:      cfg.FloodWindow,
		}, logger.Component("throttle"))
	}
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := router.New(&router.Config{
		Logger:             logger,
		Sessions:           handlers.NewSessionHandler(registry, guard, hub, logger),
		Catalog:            handlers.NewCatalogHandler(storefront),
		MetricsHandler:     metricsHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return &app{handler: handler, registry: registry, limiter: limiter, hub: hub}
}

func setupMetrics() (http.Handler, *metrics.ModalMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewModalMetrics(reg)
}

// connectRedis returns nil when no address is configured or the server does
// not answer; the flood guard is then disabled.
func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, flood guard disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
