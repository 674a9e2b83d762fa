package verification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docverify/internal/document/domain"
	"docverify/internal/extraction"
	"docverify/internal/ratelimit/models"
	"docverify/internal/verification"
	"docverify/internal/verification/ports/mocks"
	"docverify/internal/verification/store"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Save(context.Context, *verification.Record) error {
	return errors.New("disk full")
}

func (failingStore) FindByID(context.Context, uuid.UUID) (*verification.Record, error) {
	return nil, errors.New("disk full")
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	userID    uuid.UUID
	extractor *mocks.MockExtractor
	limiter   *mocks.MockAttemptLimiter
	publisher *mocks.MockAuditPublisher
	store     *store.InMemoryStore
	service   *verification.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.extractor = mocks.NewMockExtractor(ctrl)
	s.limiter = mocks.NewMockAttemptLimiter(ctrl)
	s.publisher = mocks.NewMockAuditPublisher(ctrl)
	s.store = store.NewInMemoryStore(time.Hour)
	s.userID = uuid.New()

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	s.ctx = requestcontext.WithClientMetadata(ctx, "192.0.2.1",
		"Mozilla/5.0 (Linux; Android 13; SM-A536B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")

	svc, err := verification.NewService(s.extractor, verification.NewEngine(verification.MatchStrict), s.store,
		verification.WithAttemptLimiter(s.limiter),
		verification.WithAuditPublisher(s.publisher),
		verification.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.service = svc
}

func mimbe() *domain.ExtractedIdentity {
	rec := domain.NewExtractedIdentity(domain.FormatTD1, domain.DocumentCNI, "CMR")
	rec.Surname = domain.Ptr("MIMBE")
	rec.GivenNames = domain.Ptr("LUCIEN YANNICK")
	rec.DateOfBirth = domain.Ptr(domain.MustDate(1986, time.October, 19))
	rec.DateOfExpiry = domain.Ptr(domain.MustDate(2035, time.April, 20))
	rec.DocumentNumber = domain.Ptr("AA10340702")
	rec.RawSource = "I<CMR1002275191AA10340702<<<<<<"
	rec.Validate()
	return rec
}

func claimed() verification.ClaimedProfile {
	return verification.ClaimedProfile{
		Surname:     "Mimbe",
		GivenNames:  "Lucien Yannick",
		DateOfBirth: domain.MustDate(1986, time.October, 19),
	}
}

func (s *ServiceSuite) allowAttempt(kind models.KeyPrefix) {
	s.limiter.EXPECT().CheckAttempt(gomock.Any(), s.userID, kind).
		Return(&models.RateLimitResult{Allowed: true, Limit: 10, Remaining: 9}, nil)
}

func (s *ServiceSuite) TestVerifyStoresAndAudits() {
	s.allowAttempt(models.KeyPrefixVerification)
	s.extractor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(extraction.Result{
		Identity: mimbe(),
		Attempts: []extraction.Attempt{{Strategy: extraction.StrategyMRZ, Valid: true, Used: true}},
	})

	var emitted audit.Event
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		emitted = e
		return nil
	})

	rec, err := s.service.Verify(s.ctx, verification.VerifyRequest{
		UserID:  s.userID,
		Input:   extraction.Input{MRZ: "ignored by the mock"},
		Claimed: claimed(),
	})
	s.Require().NoError(err)

	s.Equal(verification.StatusVerified, rec.Status)
	s.Equal(verification.ReasonVerified, rec.Reason)
	s.True(rec.Verified)
	s.Equal([]string{"mrz"}, rec.Sources)
	s.Empty(rec.Identity.RawSource, "stored records drop the OCR text")

	s.Equal(string(audit.EventVerificationCompleted), emitted.Action)
	s.Equal("VERIFIED", emitted.Decision)
	s.Equal(audit.HashDocumentNumber("AA10340702"), emitted.DocumentHash)
	s.NotContains(emitted.DocumentHash, "AA10340702")
	s.Regexp(`^mobile/`, emitted.ClientPlatform)
	s.Equal("req-1", emitted.RequestID)
	s.Equal(string(domain.FormatTD1), emitted.Format)

	got, err := s.service.Get(s.ctx, s.userID, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
}

func (s *ServiceSuite) TestVerifyDeclaredResidencePermit() {
	s.allowAttempt(models.KeyPrefixVerification)
	s.extractor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(extraction.Result{Identity: mimbe()})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	rec, err := s.service.Verify(s.ctx, verification.VerifyRequest{
		UserID:       s.userID,
		DeclaredType: "RESIDENCE_PERMIT_RECTO",
		Claimed:      claimed(),
	})
	s.Require().NoError(err)
	s.Equal(domain.DocumentResidencePermit, rec.DocumentType)
}

func (s *ServiceSuite) TestVerifyRateLimited() {
	s.limiter.EXPECT().CheckAttempt(gomock.Any(), s.userID, models.KeyPrefixVerification).
		Return(&models.RateLimitResult{Allowed: false, RetryAfter: 120},
			dErrors.New(dErrors.CodeRateLimited, "too many attempts, retry in 120 seconds"))

	_, err := s.service.Verify(s.ctx, verification.VerifyRequest{UserID: s.userID, Claimed: claimed()})
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *ServiceSuite) TestVerifyRequiresUser() {
	_, err := s.service.Verify(s.ctx, verification.VerifyRequest{Claimed: claimed()})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestVerifyAuditFailureDoesNotFailRequest() {
	s.allowAttempt(models.KeyPrefixVerification)
	s.extractor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(extraction.Result{Identity: mimbe()})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("buffer closed"))

	rec, err := s.service.Verify(s.ctx, verification.VerifyRequest{UserID: s.userID, Claimed: claimed()})
	s.Require().NoError(err)
	s.Equal(verification.StatusVerified, rec.Status)
}

func (s *ServiceSuite) TestVerifyStoreFailure() {
	svc, err := verification.NewService(s.extractor, nil, failingStore{},
		verification.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.extractor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(extraction.Result{Identity: mimbe()})

	_, err = svc.Verify(s.ctx, verification.VerifyRequest{UserID: s.userID, Claimed: claimed()})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestGet() {
	s.Run("unknown id", func() {
		_, err := s.service.Get(s.ctx, s.userID, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("record of another user", func() {
		other := &verification.Record{ID: uuid.New(), UserID: uuid.New()}
		s.Require().NoError(s.store.Save(s.ctx, other))

		_, err := s.service.Get(s.ctx, s.userID, other.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("expired record", func() {
		mine := &verification.Record{ID: uuid.New(), UserID: s.userID}
		s.Require().NoError(s.store.Save(s.ctx, mine))

		later := requestcontext.WithTime(context.Background(), requestcontext.Now(s.ctx).Add(2*time.Hour))
		_, err := s.service.Get(later, s.userID, mine.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExtract() {
	s.allowAttempt(models.KeyPrefixExtraction)
	s.extractor.EXPECT().Run(gomock.Any(), extraction.Input{VersoText: "verso"}).Return(extraction.Result{
		Identity: mimbe(),
		Attempts: []extraction.Attempt{{Strategy: extraction.StrategyMRZ, Used: true}},
	})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventExtractionCompleted), e.Action)
		s.Empty(e.DocumentHash)
		return nil
	})

	res, err := s.service.Extract(s.ctx, s.userID, extraction.Input{VersoText: "verso"})
	s.Require().NoError(err)
	s.True(res.Identity.Valid())
	s.NotEmpty(res.Identity.RawSource, "extraction returns the source text to its caller")
}

func (s *ServiceSuite) TestVerifyRegulatedModeMinimizesStoredIdentity() {
	svc, err := verification.NewService(s.extractor, nil, s.store,
		verification.WithAttemptLimiter(s.limiter),
		verification.WithAuditPublisher(s.publisher),
		verification.WithRegulatedMode(true),
		verification.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	s.allowAttempt(models.KeyPrefixVerification)
	s.extractor.EXPECT().Run(gomock.Any(), gomock.Any()).Return(extraction.Result{Identity: mimbe()})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(audit.HashDocumentNumber("AA10340702"), e.DocumentHash, "the audit trail still carries the hash")
		return nil
	})

	rec, err := svc.Verify(s.ctx, verification.VerifyRequest{UserID: s.userID, Claimed: claimed()})
	s.Require().NoError(err)
	s.Equal(verification.StatusVerified, rec.Status)
	s.Nil(rec.Identity.Surname)
	s.Nil(rec.Identity.DateOfBirth)
	s.Nil(rec.Identity.DocumentNumber)
	s.NotNil(rec.Identity.DateOfExpiry)
	s.Equal(domain.FormatTD1, rec.Identity.Format())
}
