package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/zeroex-adapter/internal/api"
	"github.com/Checker-Finance/zeroex-adapter/internal/jobs"
	"github.com/Checker-Finance/zeroex-adapter/internal/ledger"
	"github.com/Checker-Finance/zeroex-adapter/internal/publisher"
	"github.com/Checker-Finance/zeroex-adapter/internal/rabbitmq"
	"github.com/Checker-Finance/zeroex-adapter/internal/rate"
	internalsecrets "github.com/Checker-Finance/zeroex-adapter/internal/secrets"
	"github.com/Checker-Finance/zeroex-adapter/internal/store"
	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
	"github.com/Checker-Finance/zeroex-adapter/pkg/config"
	"github.com/Checker-Finance/zeroex-adapter/pkg/logger"
	"github.com/Checker-Finance/zeroex-adapter/pkg/secrets"
	"github.com/Checker-Finance/zeroex-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logg := logger.S()
	logg.Info("starting [zeroex-adapter]...")
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- AWS Secrets Manager provider ---
	awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
	}

	// --- Per-integrator config resolver (secrets cached in-memory) ---
	configCache := secrets.NewCache[zeroex.IntegratorConfig](cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	go configCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

	resolver := internalsecrets.NewAWSResolver(
		logg.Desugar(),
		cfg.Env,
		awsProvider,
		configCache,
	)

	// --- Discover configured integrators ---
	integrators, err := resolver.DiscoverIntegrators(ctx)
	if err != nil {
		logg.Warnw("failed to discover integrators from AWS Secrets Manager", "error", err)
	} else {
		logg.Infow("discovered 0x integrators", "count", len(integrators), "integrators", integrators)
	}

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}

	// --- Publisher ---
	pub, err := publisher.New(nc, cfg.OutboundSubject, "ZEROEX_EVENTS")
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 10,
		Burst:             20,
		Cooldown:          1 * time.Second,
	})

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, cfg.FeePlanCacheTTL, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Fee attribution ledger writer ---
	feeWriter := ledger.NewFeeSyncWriter(st.(*store.HybridStore).PG, logger.L(), cfg.ServiceName)

	// --- 0x HTTP Client (config supplied per-request) ---
	zxClient := zeroex.NewClient(
		logg.Desugar(),
		rateMgr,
	)

	// --- 0x Service ---
	svc := zeroex.NewService(
		ctx,
		*cfg,
		logg.Desugar(),
		nc,
		zxClient,
		resolver,
		pub,
		st,
		feeWriter,
	)

	// --- RabbitMQ bridge for legacy swap commands (optional) ---
	var amqpConsumer *rabbitmq.Consumer
	if cfg.AMQPURL != "" {
		amqpConsumer, err = rabbitmq.NewConsumer(cfg.AMQPURL, cfg.Venue, svc, logg.Desugar())
		if err != nil {
			logg.Fatalw("failed to init RabbitMQ consumer", "error", err)
		}
		if err := amqpConsumer.Start(ctx); err != nil {
			logg.Fatalw("failed to start RabbitMQ consumer", "error", err)
		}
	} else {
		logg.Warn("AMQP_URL not configured; legacy swap command bridge disabled")
	}

	// --- Fee revenue summary refresher ---
	refresher := jobs.NewRevenueRefresher(
		logg.Desugar(),
		nc,
		st.(*store.HybridStore).PG,
		pub,
		cfg.RevenueRefreshInterval,
	)
	go refresher.Start(ctx)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	// Swap API handler (with integrator validation via config resolver)
	integratorValidator := api.NewResolverValidator(resolver)
	swapHandler := api.NewSwapHandler(logg.Desugar(), svc, st, integratorValidator)

	api.RegisterRoutes(app, nc, st, swapHandler)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[zeroex-adapter] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"quote_validity", cfg.QuoteValidity,
		"discovered_integrators", len(integrators))

	<-ctx.Done()
	logg.Info("shutting down [zeroex-adapter]...")

	close(stopCleaner)
	refresher.Stop()
	if amqpConsumer != nil {
		if err := amqpConsumer.Close(); err != nil {
			logg.Warnw("rabbitmq.close_failed", "error", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := nc.Drain(); err != nil {
		logg.Warnw("nats.drain_failed", "error", err)
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
