package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/internal/verification/handler"
	"docverify/pkg/platform/httputil"
	authmw "docverify/pkg/platform/middleware/auth"
	"docverify/pkg/platform/middleware/metadata"
	"docverify/pkg/platform/middleware/request"
	"docverify/pkg/platform/middleware/requesttime"
)

// healthChecker reports whether a backing store is reachable.
type healthChecker interface {
	Health(ctx context.Context) error
}

type routerDeps struct {
	service   handler.Service
	validator authmw.JWTValidator
	redis     healthChecker
	logger    *slog.Logger
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler(deps.redis))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.validator, deps.logger))
		handler.New(deps.service, deps.logger).Register(r)
	})
	return r
}

func healthHandler(backend healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if backend != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := backend.Health(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"redis":  "unreachable",
				})
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
