package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/thiloilg/page-for-artists.com/internal/api/dto"
	"github.com/thiloilg/page-for-artists.com/internal/auth"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

// Authenticator is the login and refresh side of the auth service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Refresh(refreshToken string) (domain.TokenPair, error)
}

// AuthHandler serves login, refresh-token and logout.
type AuthHandler struct {
	auth       Authenticator
	cookieName string
	cookieTTL  time.Duration
}

// NewAuthHandler constructs handler. cookieTTL is the refresh cookie Max-Age.
func NewAuthHandler(authenticator Authenticator, cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: authenticator, cookieName: cookieName, cookieTTL: cookieTTL}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}
	if err := dto.Validate(req); err != nil {
		if _, tag, ok := dto.FailedField(err); ok && tag == "email" {
			return apperrors.NewValidationError("A valid email address is required")
		}
		return apperrors.NewValidationError("Email and password are required")
	}

	pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair)
	return c.JSON(dto.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Refresh handles POST /refresh-token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	pair, err := h.auth.Refresh(c.Cookies(h.cookieName))
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair)
	return c.JSON(dto.RefreshResponse{AccessToken: pair.AccessToken})
}

// Logout handles POST /logout. Tokens are not revoked; the cookie is expired.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Set(fiber.HeaderSetCookie, auth.ClearedRefreshCookie(h.cookieName))
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, pair domain.TokenPair) {
	c.Set(fiber.HeaderSetCookie, auth.RefreshCookie(h.cookieName, pair.RefreshToken, h.cookieTTL))
}
