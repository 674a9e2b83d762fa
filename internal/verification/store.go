package verification

import (
	"context"

	"github.com/google/uuid"
)

// Store keeps verification records for a limited time. Results are transient:
// the caller's own system of record decides what to persist.
// Implementations return sentinel.ErrNotFound for unknown or expired IDs.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
}
