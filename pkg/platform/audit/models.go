package audit

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// identity checks performed on a user.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers abuse signals (attempt limits, rejected tokens).
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from service logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out. Raw document numbers
// never appear; DocumentHash carries their BLAKE2b-256 digest.
type Event struct {
	Category       EventCategory `json:"category"`
	Timestamp      time.Time     `json:"timestamp"`
	UserID         uuid.UUID     `json:"user_id"`
	Subject        string        `json:"subject,omitempty"`
	Action         string        `json:"action"`
	Decision       string        `json:"decision,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	Format         string        `json:"format,omitempty"`
	DocumentType   string        `json:"document_type,omitempty"`
	DocumentHash   string        `json:"document_hash,omitempty"`
	Sources        []string      `json:"sources,omitempty"`
	ClientPlatform string        `json:"client_platform,omitempty"`
	RequestID      string        `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventVerificationCompleted AuditEvent = "verification_completed"
	EventExtractionCompleted   AuditEvent = "extraction_completed"
	EventRateLimitExceeded     AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerificationCompleted: CategoryCompliance,
	EventRateLimitExceeded:     CategorySecurity,
	EventExtractionCompleted:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Event, error)
}

// Sink forwards events to an external system after they are stored.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close()
}

// HashDocumentNumber returns the hex BLAKE2b-256 digest of a normalized
// document number, or "" when there is none.
func HashDocumentNumber(number string) string {
	n := strings.ToUpper(strings.Join(strings.Fields(number), ""))
	if n == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(n))
	return hex.EncodeToString(sum[:])
}
