package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

const principalKey = "auth_principal"

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (domain.CredentialPayload, bool)
}

// Principal represents the authenticated dashboard user.
type Principal struct {
	Email string
}

// AuthMiddleware validates bearer access tokens.
type AuthMiddleware struct {
	tokens AccessVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens AccessVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("Missing or invalid authorization header")
	}

	payload, ok := m.tokens.VerifyAccess(strings.TrimSpace(parts[1]))
	if !ok {
		return apperrors.NewUnauthorized("Invalid token")
	}

	c.Locals(principalKey, &Principal{Email: payload.Email})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
