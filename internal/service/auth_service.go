package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/auth"
	"github.com/thiloilg/page-for-artists.com/internal/directory"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

const invalidCredentials = "Invalid credentials"

// CustomerFinder resolves login emails to directory customers.
type CustomerFinder interface {
	FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// AuthService coordinates login and token refresh.
type AuthService struct {
	customers CustomerFinder
	tokens    *auth.TokenManager
	logger    *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(customers CustomerFinder, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{customers: customers, tokens: tokens, logger: logger}
}

// Login checks the password against the bcrypt hash stored on the customer.
// Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	email = strings.TrimSpace(email)

	customer, err := s.customers.FindCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrCustomerNotFound) {
			auth.BurnPasswordCheck(password)
			return domain.TokenPair{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		s.logger.Error("customer lookup failed during login", zap.Error(err))
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	if customer.PasswordHash == "" {
		auth.BurnPasswordCheck(password)
		return domain.TokenPair{}, apperrors.NewUnauthorized(invalidCredentials)
	}
	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return domain.TokenPair{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	pair, err := s.tokens.Issue(domain.CredentialPayload{Email: email})
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	return pair, nil
}

// Refresh rotates the token pair for a valid refresh token. The presented
// token is not revoked and stays usable until it expires.
func (s *AuthService) Refresh(refreshToken string) (domain.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return domain.TokenPair{}, apperrors.NewUnauthorized("No refresh token provided")
	}

	payload, ok := s.tokens.VerifyRefresh(refreshToken)
	if !ok {
		return domain.TokenPair{}, apperrors.NewUnauthorized("Invalid refresh token")
	}

	pair, err := s.tokens.Issue(payload)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	return pair, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
