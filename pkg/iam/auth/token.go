package auth

import (
	"errors"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, tenantID kernel.TenantID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// TokenClaims is the validated content of an access token
type TokenClaims struct {
	UserID    kernel.UserID
	TenantID  kernel.TenantID
	Email     string
	Scopes    []string
	ExpiresAt time.Time
}

type accessClaims struct {
	UserID   string   `json:"uid"`
	TenantID string   `json:"tid,omitempty"`
	Email    string   `json:"email,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 access tokens
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a token service. ttl <= 0 falls back to 15 minutes.
func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken signs a token for the user. Recognised claims are
// "email" (string) and "scopes" ([]string).
func (s *JWTService) GenerateAccessToken(userID kernel.UserID, tenantID kernel.TenantID, claims map[string]any) (string, error) {
	if len(s.secret) == 0 {
		return "", errx.New("AUTH_SIGNING_DISABLED", errx.TypeInternal, "token signing secret is not configured")
	}

	now := s.now()
	c := accessClaims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if email, ok := claims["email"].(string); ok {
		c.Email = email
	}
	if scopes, ok := claims["scopes"].([]string); ok {
		c.Scopes = scopes
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign access token", errx.TypeInternal)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies a token
func (s *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrInvalidToken().WithDetail("reason", "token validation disabled")
	}

	var c accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "expired"
		}
		return nil, ErrInvalidToken().WithDetail("reason", reason).WithCause(err)
	}
	if c.UserID == "" {
		return nil, ErrInvalidToken().WithDetail("reason", "missing subject")
	}

	out := &TokenClaims{
		UserID:   kernel.UserID(c.UserID),
		TenantID: kernel.TenantID(c.TenantID),
		Email:    c.Email,
		Scopes:   c.Scopes,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
