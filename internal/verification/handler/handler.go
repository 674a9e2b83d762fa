package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docverify/internal/extraction"
	"docverify/internal/verification"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

// Service defines the interface for verification operations.
type Service interface {
	Verify(ctx context.Context, req verification.VerifyRequest) (*verification.Record, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*verification.Record, error)
	Extract(ctx context.Context, userID uuid.UUID, in extraction.Input) (*extraction.Result, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts verification endpoints on the router. Callers are
// expected to wrap r with authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verifications", h.HandleVerify)
	r.Get("/verifications/{id}", h.HandleGet)
	r.Post("/extractions", h.HandleExtract)
}

// HandleVerify handles POST /verifications requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Verify(ctx, verification.VerifyRequest{
		UserID:       userID,
		DeclaredType: req.DocumentType,
		Input:        req.Input(),
		Claimed:      req.Claimed(),
	})
	if err != nil {
		h.logFailure(ctx, "verification failed", requestID, userID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification created",
		"request_id", requestID,
		"user_id", userID,
		"verification_id", rec.ID,
		"status", rec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleGet handles GET /verifications/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid verification id"))
		return
	}

	rec, err := h.service.Get(ctx, userID, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logFailure(ctx, "failed to load verification", requestID, userID, err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleExtract handles POST /extractions requests.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ExtractRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Extract(ctx, userID, req.Input())
	if err != nil {
		h.logFailure(ctx, "extraction failed", requestID, userID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document extracted",
		"request_id", requestID,
		"user_id", userID,
		"valid", res.Identity.Valid(),
		"sources", res.Sources(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(res))
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (uuid.UUID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, userID uuid.UUID, err error) {
	level := slog.LevelError
	if code := dErrors.CodeOf(err); code == dErrors.CodeRateLimited || code == dErrors.CodeValidation {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"user_id", userID,
		"error", err,
	)
}
