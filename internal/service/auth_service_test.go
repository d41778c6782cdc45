package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thiloilg/page-for-artists.com/internal/auth"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeDirectory) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	dir := newFakeDirectory()
	dir.byEmail["artist@example.com"] = domain.Customer{Email: "artist@example.com", PasswordHash: string(hash)}
	dir.byEmail["nohash@example.com"] = domain.Customer{Email: "nohash@example.com"}

	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(dir, tokens, nil), dir
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), "artist@example.com", "correct horse")
	require.NoError(t, err)

	payload, ok := svc.TokenManager().VerifyAccess(pair.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "artist@example.com", payload.Email)
	_, ok = svc.TokenManager().VerifyRefresh(pair.RefreshToken)
	assert.True(t, ok)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture(t)

	cases := []struct{ email, password string }{
		{"missing@example.com", "correct horse"},
		{"artist@example.com", "wrong"},
		{"nohash@example.com", "anything"},
	}
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		de := apperrors.ToDomainError(err)
		require.NotNil(t, de, tc.email)
		assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
		assert.Equal(t, "Invalid credentials", de.Message)
	}
}

func TestLoginDirectoryFailure(t *testing.T) {
	svc, dir := newAuthFixture(t)
	dir.findErr = errors.New("strapi down")

	_, err := svc.Login(context.Background(), "artist@example.com", "correct horse")
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.NotContains(t, de.Message, "strapi")
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Refresh("")
	assert.Equal(t, "No refresh token provided", apperrors.ToDomainError(err).Message)

	_, err = svc.Refresh("garbage")
	assert.Equal(t, "Invalid refresh token", apperrors.ToDomainError(err).Message)

	pair, err := svc.Login(context.Background(), "artist@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.Refresh(pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus, "access token is not a refresh token")

	rotated, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	payload, ok := svc.TokenManager().VerifyAccess(rotated.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "artist@example.com", payload.Email)

	_, err = svc.Refresh(pair.RefreshToken)
	assert.NoError(t, err, "old refresh tokens remain valid until expiry")
}
