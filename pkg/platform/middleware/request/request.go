// Package request assigns every request a correlation ID.
package request

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"docverify/pkg/requestcontext"
)

// HeaderRequestID carries the correlation ID in both directions.
const HeaderRequestID = "X-Request-ID"

var acceptableID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,64}$`)

// RequestID reuses a well-formed inbound X-Request-ID or generates one, stores
// it in the context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !acceptableID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
