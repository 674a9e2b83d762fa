package auth

import (
	"context"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GetSigningKey() string
	GetIssuer() string
	SetAccessToken(token string)
	Save(key, value string)
}

// RegisterSteps registers token step definitions. Tokens are minted with the
// server's signing key; the service does not issue them itself.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I am authenticated as a new user$`, steps.authenticatedAsNewUser)
	ctx.Step(`^I am authenticated as another user$`, steps.authenticatedAsNewUser)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)
	ctx.Step(`^I use an expired token$`, steps.expiredToken)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) authenticatedAsNewUser(ctx context.Context) error {
	userID := uuid.New()
	token, err := s.mint(userID, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}
	s.tc.Save("user_id", userID.String())
	s.tc.SetAccessToken(token)
	return nil
}

func (s *authSteps) notAuthenticated(ctx context.Context) error {
	s.tc.SetAccessToken("")
	return nil
}

func (s *authSteps) expiredToken(ctx context.Context) error {
	token, err := s.mint(uuid.New(), time.Now().Add(-time.Minute))
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(token)
	return nil
}

func (s *authSteps) mint(userID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.tc.GetIssuer(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tc.GetSigningKey()))
}
