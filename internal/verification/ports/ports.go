// Package ports declares what the verification service needs from other
// modules, so the service depends on behavior rather than packages.
package ports

import (
	"context"

	"github.com/google/uuid"

	"docverify/internal/extraction"
	"docverify/internal/ratelimit/models"
	"docverify/pkg/platform/audit"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// Extractor reads a document into one folded record.
type Extractor interface {
	Run(ctx context.Context, in extraction.Input) extraction.Result
}

// AttemptLimiter consumes one attempt of kind for a user and fails with a
// rate_limited domain error once the budget is spent.
type AttemptLimiter interface {
	CheckAttempt(ctx context.Context, userID uuid.UUID, kind models.KeyPrefix) (*models.RateLimitResult, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
