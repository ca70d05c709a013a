package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

const sessionIssuer = "klmaterial-hub"

// SessionService issues and validates the anonymous browsing session token.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService constructs the session signer.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long a session stays valid.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue starts a new session.
func (s *SessionService) Issue() (string, *models.SessionClaims, error) {
	issuedAt := s.now().UTC()
	id := uuid.NewString()
	claims := &models.SessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Validate parses a session token and checks signature, issuer and expiry.
func (s *SessionService) Validate(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

// AdminAuthenticator checks the admin bearer token against a bcrypt hash.
type AdminAuthenticator struct {
	hash []byte
}

// NewAdminAuthenticator constructs the checker. An empty hash disables admin access.
func NewAdminAuthenticator(hash string) *AdminAuthenticator {
	return &AdminAuthenticator{hash: []byte(hash)}
}

// Enabled reports whether an admin token is configured.
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && len(a.hash) > 0
}

// Verify returns nil when token matches the configured hash.
func (a *AdminAuthenticator) Verify(token string) error {
	if !a.Enabled() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin access disabled")
	}
	if token == "" {
		return appErrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(token)); err != nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin token")
	}
	return nil
}
