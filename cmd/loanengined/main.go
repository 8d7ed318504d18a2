package main

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

	"github.com/bibbank/loanengine/internal/application/usecase"
	"github.com/bibbank/loanengine/internal/domain/port"
	"github.com/bibbank/loanengine/internal/domain/service"
	"github.com/bibbank/loanengine/internal/infrastructure/cache"
	"github.com/bibbank/loanengine/internal/infrastructure/config"
	"github.com/bibbank/loanengine/internal/infrastructure/messaging"
	pgRepo "github.com/bibbank/loanengine/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/loanengine/internal/infrastructure/telemetry"
	grpcPresentation "github.com/bibbank/loanengine/internal/presentation/grpc"
	"github.com/bibbank/loanengine/internal/presentation/rest"
	"github.com/bibbank/loanengine/pkg/observability"
	pkgpostgres "github.com/bibbank/loanengine/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("loanengined failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.Load()

	logger := observability.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting loanengined",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing is optional; without a collector endpoint spans are dropped.
	if cfg.Tracing.Endpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return err
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	engineMetrics, err := telemetry.NewEngineMetrics(meterProvider)
	if err != nil {
		return err
	}

	// Database connection and migrations.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pgRepo.Migrate(cfg.DB.DSN()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Scoring policy.
	scoring, err := config.NewScoringEngine(cfg.ScoringFile)
	if err != nil {
		return err
	}
	logger.Info("scoring policy loaded", "file", cfg.ScoringFile, "criteria", len(scoring.Criteria()))

	// Wire infrastructure adapters.
	publisher, closePublisher, err := messaging.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closePublisher() }() //nolint:errcheck // best-effort flush

	schedules := pgRepo.NewScheduleRepo(pool)
	readiness := map[string]rest.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}

	var evaluations port.EvaluationPersistenceGateway = pgRepo.NewEvaluationRepo(pool)
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		evaluations = cache.NewEvaluationCache(evaluations, redisClient, cfg.Redis.TTL, logger)
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.Info("evaluation cache enabled", "ttl", cfg.Redis.TTL)
	}
	installments := pgRepo.NewInstallmentRepo(pool)
	engine := service.NewAmortizationEngine()
	calculator := service.NewMoraCalculator(service.MoraPolicy{PromoteOverduePending: cfg.Mora.PromotePending})

	// Wire use cases.
	generateUC := usecase.NewGenerateScheduleUseCase(schedules, publisher, engine, engineMetrics, logger)
	evaluateUC := usecase.NewEvaluateApplicantUseCase(evaluations, publisher, scoring, engineMetrics, logger)
	approveUC := usecase.NewApproveLoanUseCase(evaluations, schedules, publisher, engine, engineMetrics, logger)
	moraUC := usecase.NewRecalculateMoraUseCase(installments, publisher, calculator, engineMetrics, logger, cfg.Mora.Workers)

	// gRPC server.
	handler := grpcPresentation.NewLoanEngineHandler(generateUC, evaluateUC, approveUC, moraUC, logger).
		WithDefaultMoraRate(cfg.Mora.DailyRate)
	grpcServer, err := grpcPresentation.NewServer(handler, logger, grpcPresentation.ServerOptions{
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		Reflection:  cfg.Reflection,
	})
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, readiness, metricsHandler, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loanengined stopped")
	return serveErr
}
