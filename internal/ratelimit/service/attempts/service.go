// Package attempts limits how many document checks a user may submit in a
// sliding window.
package attempts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docverify/internal/ratelimit/metrics"
	"docverify/internal/ratelimit/models"
	"docverify/internal/ratelimit/ports"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/requestcontext"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

type (
	BucketStore    = ports.BucketStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	buckets        BucketStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	limit          int
	window         time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimit sets the attempts allowed per window. Non-positive values keep
// the defaults.
func WithLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
		if window > 0 {
			s.window = window
		}
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}
	svc := &Service{
		buckets: buckets,
		logger:  slog.Default(),
		limit:   DefaultLimit,
		window:  DefaultWindow,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckAttempt consumes one attempt of kind for userID. A user over the limit
// gets a CodeRateLimited error alongside the result, which carries the retry
// hint.
func (s *Service) CheckAttempt(ctx context.Context, userID uuid.UUID, kind models.KeyPrefix) (*models.RateLimitResult, error) {
	key := models.NewRateLimitKey(kind, userID.String())
	result, err := s.buckets.Allow(ctx, key.String(), s.limit, s.window)
	if err != nil {
		s.metrics.IncrementStoreErrors()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check attempt limit")
	}
	s.metrics.RecordAttempt(string(kind), result.Allowed)
	if result.Allowed {
		return result, nil
	}

	requestID := requestcontext.RequestID(ctx)
	s.logger.WarnContext(ctx, "attempt limit exceeded",
		"request_id", requestID,
		"user_id", userID,
		"operation", kind,
		"limit", s.limit,
		"window_seconds", int(s.window.Seconds()),
	)
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			UserID:    userID,
			Action:    string(audit.EventRateLimitExceeded),
			Subject:   string(kind),
			Reason:    fmt.Sprintf("%d attempts per %s", s.limit, s.window),
			RequestID: requestID,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event", "request_id", requestID, "error", err)
		}
	}
	return result, dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many attempts, retry in %d seconds", result.RetryAfter))
}
