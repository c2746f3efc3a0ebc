package auth

import (
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const authContextKey = "auth_context"

// AuthContext describes the authenticated caller of a request
type AuthContext struct {
	UserID     *kernel.UserID
	TenantID   kernel.TenantID
	Email      string
	Scopes     []string
	IsAPIKey   bool
	APIKeyName string
}

// HasScope reports whether the caller holds any of the given scopes
func (a *AuthContext) HasScope(scopes ...string) bool {
	return HasAnyScope(a.Scopes, scopes...)
}

// GetAuthContext returns the caller set by UnifiedAuthMiddleware.Authenticate
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	ac, ok := c.Locals(authContextKey).(*AuthContext)
	if !ok || ac == nil || ac.UserID == nil {
		return nil, false
	}
	return ac, true
}

func setAuthContext(c *fiber.Ctx, ac *AuthContext) {
	c.Locals(authContextKey, ac)
}
