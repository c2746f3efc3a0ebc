package auth

import (
	"strings"

	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// UnifiedAuthMiddleware accepts either a bearer JWT or an X-API-Key header
type UnifiedAuthMiddleware struct {
	tokens TokenService
	keys   *APIKeyStore
}

func NewUnifiedAuthMiddleware(tokens TokenService, keys *APIKeyStore) *UnifiedAuthMiddleware {
	return &UnifiedAuthMiddleware{
		tokens: tokens,
		keys:   keys,
	}
}

// Authenticate resolves the caller and stores it on the request
func (m *UnifiedAuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// API keys take precedence
		if raw := c.Get("X-API-Key"); raw != "" {
			if m.keys == nil {
				return ErrInvalidAPIKey()
			}
			ac, err := m.keys.Verify(raw)
			if err != nil {
				logx.Debugf("api key rejected on %s", c.Path())
				return err
			}
			setAuthContext(c, ac)
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return ErrMissingCredentials()
		}

		// Format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return ErrInvalidToken().WithDetail("reason", "invalid authorization format")
		}

		claims, err := m.tokens.ValidateAccessToken(parts[1])
		if err != nil {
			return err
		}

		userID := claims.UserID
		setAuthContext(c, &AuthContext{
			UserID:   &userID,
			TenantID: claims.TenantID,
			Email:    claims.Email,
			Scopes:   claims.Scopes,
		})
		return c.Next()
	}
}

// RequireScope allows the request when the caller holds any of the scopes
func (m *UnifiedAuthMiddleware) RequireScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, ok := GetAuthContext(c)
		if !ok {
			return ErrMissingCredentials()
		}
		if !ac.HasScope(scopes...) {
			return ErrInsufficientScope().WithDetail("required_scopes", scopes)
		}
		return c.Next()
	}
}
