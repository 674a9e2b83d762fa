package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server. Write and idle timeouts leave room for a vision
// model round trip inside a verification request.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
