package attempts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/ratelimit/models"
	"docverify/internal/ratelimit/store/bucket"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/audit/store/memory"
	"docverify/pkg/requestcontext"
	"docverify/pkg/testutil"
)

type failingStore struct{ BucketStore }

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

type storePublisher struct{ store *memory.InMemoryStore }

func (p storePublisher) Emit(ctx context.Context, e audit.Event) error {
	return p.store.Append(ctx, e)
}

func TestCheckAttempt(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	testutil.Given(t, "a limit of three attempts per hour", func(t *testing.T) {
		events := memory.NewInMemoryStore()
		svc, err := New(bucket.NewInMemoryBucketStore(),
			WithLimit(3, time.Hour),
			WithLogger(logger),
			WithAuditPublisher(storePublisher{events}),
		)
		require.NoError(t, err)
		userID := uuid.New()

		testutil.When(t, "the user stays within the limit", func(t *testing.T) {
			for range 3 {
				result, err := svc.CheckAttempt(ctx, userID, models.KeyPrefixVerification)
				require.NoError(t, err)
				assert.True(t, result.Allowed)
			}
		})

		testutil.Then(t, "the fourth attempt is rate limited and audited", func(t *testing.T) {
			result, err := svc.CheckAttempt(ctx, userID, models.KeyPrefixVerification)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))
			assert.False(t, result.Allowed)
			assert.Equal(t, 3600, result.RetryAfter)
			assert.Equal(t, 1, events.Count(audit.EventRateLimitExceeded))
		})

		testutil.Then(t, "other users and operations have their own budget", func(t *testing.T) {
			_, err := svc.CheckAttempt(ctx, uuid.New(), models.KeyPrefixVerification)
			assert.NoError(t, err)
			_, err = svc.CheckAttempt(ctx, userID, models.KeyPrefixExtraction)
			assert.NoError(t, err)
		})
	})

	t.Run("store failure is internal", func(t *testing.T) {
		svc, err := New(failingStore{}, WithLogger(logger))
		require.NoError(t, err)
		_, err = svc.CheckAttempt(ctx, uuid.New(), models.KeyPrefixVerification)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("store is required", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})
}
