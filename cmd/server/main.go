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

	"docverify/internal/document/mrz"
	"docverify/internal/document/sanitize"
	"docverify/internal/document/vision"
	"docverify/internal/extraction"
	"docverify/internal/platform/config"
	"docverify/internal/platform/httpserver"
	"docverify/internal/platform/jwttoken"
	"docverify/internal/platform/logger"
	"docverify/internal/platform/redis"
	rlmetrics "docverify/internal/ratelimit/metrics"
	"docverify/internal/ratelimit/ports"
	"docverify/internal/ratelimit/service/attempts"
	"docverify/internal/ratelimit/store/bucket"
	"docverify/internal/verification"
	vmetrics "docverify/internal/verification/metrics"
	"docverify/internal/verification/store"
	"docverify/pkg/platform/audit/kafka"
	"docverify/pkg/platform/audit/publisher"
	auditmemory "docverify/pkg/platform/audit/store/memory"
	"docverify/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("using redis for verification results and attempt limits")
	}

	auditPublisher, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer auditPublisher.Close()

	var buckets ports.BucketStore = bucket.NewInMemoryBucketStore()
	var results verification.Store = store.NewInMemoryStore(cfg.Verification.ResultTTL)
	if redisClient != nil {
		buckets = bucket.NewFallbackBucketStore(bucket.NewRedisBucketStore(redisClient.Client),
			bucket.WithFallbackLogger(log))
		results = store.NewRedisStore(redisClient.Client, cfg.Verification.ResultTTL)
	}

	limiter, err := attempts.New(buckets,
		attempts.WithLogger(log),
		attempts.WithAuditPublisher(auditPublisher),
		attempts.WithMetrics(rlmetrics.New()),
		attempts.WithLimit(cfg.Verification.AttemptLimit, cfg.Verification.AttemptWindow),
	)
	if err != nil {
		return err
	}

	metrics := vmetrics.New()
	chain, err := buildChain(cfg, log, metrics)
	if err != nil {
		return err
	}

	mode, err := verification.ParseMatchMode(cfg.Verification.NameMatching)
	if err != nil {
		return err
	}
	service, err := verification.NewService(chain, verification.NewEngine(mode), results,
		verification.WithLogger(log),
		verification.WithMetrics(metrics),
		verification.WithAuditPublisher(auditPublisher),
		verification.WithAttemptLimiter(limiter),
		verification.WithRegulatedMode(cfg.Server.RegulatedMode),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	deps := routerDeps{
		service:   service,
		validator: jwttoken.NewMiddlewareValidator(jwtService),
		logger:    log,
	}
	if redisClient != nil {
		deps.redis = redisClient
	}
	router := newRouter(deps)

	srv := httpserver.New(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting docverify", "addr", cfg.Server.Addr, "vision", cfg.VisionConfigured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildAuditPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (*publisher.Publisher, error) {
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(cfg.Verification.AuditBuffer),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafka.New(ctx, kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.AuditTopic,
		}, kafka.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("audit sink: %w", err)
		}
		opts = append(opts, publisher.WithSink(sink))
		log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	return publisher.NewPublisher(auditmemory.NewInMemoryStore(), opts...), nil
}

func buildChain(cfg config.Config, log *slog.Logger, metrics *vmetrics.Metrics) (*extraction.Chain, error) {
	san, err := sanitize.FromFile(cfg.Sanitizer.OverridesPath)
	if err != nil {
		return nil, err
	}

	var reader extraction.Reader
	if cfg.VisionConfigured() {
		reader = vision.NewClient(vision.Config{
			BaseURL:   cfg.Vision.BaseURL,
			APIKey:    cfg.Vision.APIKey,
			Model:     cfg.Vision.Model,
			Timeout:   cfg.Vision.Timeout,
			MaxTokens: cfg.Vision.MaxTokens,
		},
			vision.WithLogger(log),
			vision.WithBreaker(circuit.New("vision",
				circuit.WithFailureThreshold(cfg.Vision.FailureThreshold),
				circuit.WithCooldown(cfg.Vision.Cooldown),
			)),
		)
	}

	return extraction.New(
		[]extraction.Strategy{extraction.MRZStrategy(mrz.New(san)), extraction.VisualStrategy()},
		extraction.WithFallback(extraction.VisionStrategy(reader)),
		extraction.WithEscalation(verification.NeedsMoreEvidence),
		extraction.WithObserver(metrics),
		extraction.WithLogger(log),
	), nil
}
