package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/document/domain"
	"docverify/internal/extraction"
	"docverify/internal/ratelimit/models"
	"docverify/internal/verification/metrics"
	"docverify/internal/verification/ports"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/middleware/device"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// VerifyRequest is one document check submitted by an authenticated user.
type VerifyRequest struct {
	UserID       uuid.UUID
	DeclaredType string
	Input        extraction.Input
	Claimed      ClaimedProfile
}

// Service reads documents through the extraction chain, judges them with the
// engine and keeps the outcome for later retrieval.
type Service struct {
	extractor      ports.Extractor
	engine         *Engine
	store          Store
	limiter        ports.AttemptLimiter
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	regulated      bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithAttemptLimiter bounds how often a user may submit documents.
func WithAttemptLimiter(l ports.AttemptLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithRegulatedMode stores minimized identities: personal fields are
// dropped once the verdict is reached.
func WithRegulatedMode(enabled bool) Option {
	return func(s *Service) {
		s.regulated = enabled
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func NewService(extractor ports.Extractor, engine *Engine, store Store, opts ...Option) (*Service, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if engine == nil {
		engine = NewEngine(MatchStrict)
	}
	svc := &Service{
		extractor: extractor,
		engine:    engine,
		store:     store,
		logger:    slog.Default(),
		tracer:    otel.Tracer("docverify/verification"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Verify runs the full check and stores its outcome.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*Record, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()

	if req.UserID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.checkAttempt(ctx, req.UserID, models.KeyPrefixVerification); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	extracted := s.extractor.Run(ctx, req.Input)
	res := s.engine.Verify(extracted.Identity, req.Claimed, now)
	res.DocumentType = ResolveDocumentType(req.DeclaredType, res.DocumentType)

	rec := &Record{
		ID:           uuid.New(),
		UserID:       req.UserID,
		DeclaredType: req.DeclaredType,
		Status:       res.Status,
		Reason:       res.Reason,
		Message:      res.Message,
		Verified:     res.Verified,
		Matches: Matches{
			Surname:     res.SurnameMatch,
			GivenNames:  res.GivenNameMatch,
			DateOfBirth: res.DOBMatch,
		},
		Expired:      res.DocumentExpired,
		DocumentType: res.DocumentType,
		Identity:     s.storedIdentity(res.Identity),
		Sources:      extracted.Sources(),
		CreatedAt:    now,
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification")
	}

	span.SetAttributes(
		attribute.String("verification.status", string(rec.Status)),
		attribute.String("verification.reason", string(rec.Reason)),
	)
	s.metrics.IncrementOutcome(string(rec.Status), string(rec.Reason))
	s.metrics.ObserveVerifyLatency(time.Since(start))
	s.emitCompleted(ctx, rec, res.Identity)

	s.logger.InfoContext(ctx, "document verified",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", req.UserID,
		"verification_id", rec.ID,
		"status", rec.Status,
		"reason", rec.Reason,
		"sources", rec.Sources,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// Get returns a stored verification owned by userID. Records of other users
// and expired records are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Record, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	if rec.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
	}
	return rec, nil
}

// Extract runs only the extraction chain. Extraction attempts are limited in
// their own bucket.
func (s *Service) Extract(ctx context.Context, userID uuid.UUID, in extraction.Input) (*extraction.Result, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Extract")
	defer span.End()

	if userID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.checkAttempt(ctx, userID, models.KeyPrefixExtraction); err != nil {
		return nil, err
	}

	res := s.extractor.Run(ctx, in)
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			Timestamp:      requestcontext.Now(ctx),
			UserID:         userID,
			Action:         string(audit.EventExtractionCompleted),
			Format:         string(res.Identity.Format()),
			DocumentType:   string(res.Identity.DocumentType),
			Sources:        res.Sources(),
			ClientPlatform: device.Platform(requestcontext.UserAgent(ctx)),
			RequestID:      requestcontext.RequestID(ctx),
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return &res, nil
}

func (s *Service) checkAttempt(ctx context.Context, userID uuid.UUID, kind models.KeyPrefix) error {
	if s.limiter == nil {
		return nil
	}
	_, err := s.limiter.CheckAttempt(ctx, userID, kind)
	return err
}

func (s *Service) emitCompleted(ctx context.Context, rec *Record, identity *domain.ExtractedIdentity) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp:      rec.CreatedAt,
		UserID:         rec.UserID,
		Subject:        rec.ID.String(),
		Action:         string(audit.EventVerificationCompleted),
		Decision:       string(rec.Status),
		Reason:         string(rec.Reason),
		DocumentType:   string(rec.DocumentType),
		Sources:        rec.Sources,
		ClientPlatform: device.Platform(requestcontext.UserAgent(ctx)),
		RequestID:      requestcontext.RequestID(ctx),
	}
	if identity != nil {
		event.Format = string(identity.Format())
		if identity.DocumentNumber != nil {
			event.DocumentHash = audit.HashDocumentNumber(*identity.DocumentNumber)
		}
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"verification_id", rec.ID,
			"error", err,
		)
	}
}

// storedIdentity copies rec without the OCR text it was read from. In
// regulated mode names, birth date, sex and document number go too.
func (s *Service) storedIdentity(rec *domain.ExtractedIdentity) *domain.ExtractedIdentity {
	if rec == nil {
		return nil
	}
	out := *rec
	out.RawSource = ""
	if s.regulated {
		out.Surname = nil
		out.GivenNames = nil
		out.DateOfBirth = nil
		out.Sex = nil
		out.DocumentNumber = nil
	}
	return &out
}
