package bucket

import (
	"context"
	"log/slog"
	"time"

	"docverify/internal/ratelimit/models"
	"docverify/internal/ratelimit/ports"
	"docverify/pkg/platform/circuit"
)

// FallbackBucketStore keeps attempt limits enforced during a primary store
// outage. Consecutive primary errors open the breaker; while it is open the
// in-memory fallback answers and the primary is probed after each cooldown.
// Fallback counts are per process, so limits loosen across replicas until
// the primary recovers.
type FallbackBucketStore struct {
	primary  ports.BucketStore
	fallback ports.BucketStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type FallbackOption func(*FallbackBucketStore)

func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackBucketStore) { s.logger = logger }
}

func WithFallbackBreaker(b *circuit.Breaker) FallbackOption {
	return func(s *FallbackBucketStore) { s.breaker = b }
}

func NewFallbackBucketStore(primary ports.BucketStore, opts ...FallbackOption) *FallbackBucketStore {
	s := &FallbackBucketStore{
		primary:  primary,
		fallback: NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit-store", circuit.WithSuccessThreshold(3)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Degraded reports whether the fallback is answering.
func (s *FallbackBucketStore) Degraded() bool {
	return s.breaker.IsOpen()
}

func (s *FallbackBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

func (s *FallbackBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if s.breaker.Allow() {
		res, err := s.primary.AllowN(ctx, key, cost, limit, window)
		if err == nil {
			s.recordSuccess(ctx)
			if !s.breaker.IsOpen() {
				return res, nil
			}
		} else {
			s.recordFailure(ctx, err)
		}
	}
	return s.fallback.AllowN(ctx, key, cost, limit, window)
}

func (s *FallbackBucketStore) Reset(ctx context.Context, key string) error {
	_ = s.fallback.Reset(ctx, key)
	return s.primary.Reset(ctx, key)
}

func (s *FallbackBucketStore) GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error) {
	if s.breaker.IsOpen() {
		return s.fallback.GetCurrentCount(ctx, key, window)
	}
	return s.primary.GetCurrentCount(ctx, key, window)
}

func (s *FallbackBucketStore) recordFailure(ctx context.Context, err error) {
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "attempt store unavailable, using in-memory fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
}

func (s *FallbackBucketStore) recordSuccess(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "attempt store recovered",
			"breaker", s.breaker.Name(),
		)
	}
}
