package models

import (
	"strings"
	"time"
)

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// KeyPrefix namespaces bucket keys by what is being limited.
type KeyPrefix string

const (
	KeyPrefixVerification KeyPrefix = "verify"
	KeyPrefixExtraction   KeyPrefix = "extract"
)

// RateLimitKey identifies one sliding-window bucket.
type RateLimitKey struct {
	prefix     KeyPrefix
	identifier string
}

func NewRateLimitKey(prefix KeyPrefix, identifier string) RateLimitKey {
	return RateLimitKey{prefix: prefix, identifier: identifier}
}

func (k RateLimitKey) String() string {
	return "ratelimit:" + string(k.prefix) + ":" + SanitizeKeySegment(k.identifier)
}

// SanitizeKeySegment escapes the key delimiter so an identifier containing ':'
// cannot address another bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
