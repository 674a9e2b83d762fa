package testutil

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"docverify/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context, as the auth middleware
// would for an authenticated request.
func WithUserID(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithClient sets the client metadata the metadata middleware would capture.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
