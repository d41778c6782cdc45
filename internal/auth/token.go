package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenManager issues and validates the access/refresh JWT pair.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Claims describes JWT payload.
type Claims struct {
	Email string           `json:"email"`
	Kind  domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// RefreshTTL is the lifetime of refresh tokens, used for the cookie Max-Age.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// Issue signs a fresh access and refresh token for the payload.
func (tm *TokenManager) Issue(payload domain.CredentialPayload) (domain.TokenPair, error) {
	issuedAt := tm.now()

	access, accessExp, err := tm.sign(payload, domain.TokenKindAccess, issuedAt, tm.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := tm.sign(payload, domain.TokenKindRefresh, issuedAt, tm.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess returns the payload of a valid, unexpired access token.
func (tm *TokenManager) VerifyAccess(token string) (domain.CredentialPayload, bool) {
	return tm.verify(token, domain.TokenKindAccess)
}

// VerifyRefresh returns the payload of a valid, unexpired refresh token.
func (tm *TokenManager) VerifyRefresh(token string) (domain.CredentialPayload, bool) {
	return tm.verify(token, domain.TokenKindRefresh)
}

func (tm *TokenManager) sign(payload domain.CredentialPayload, kind domain.TokenKind, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Email: payload.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (tm *TokenManager) verify(tokenStr string, kind domain.TokenKind) (domain.CredentialPayload, bool) {
	claims, err := tm.parse(tokenStr)
	if err != nil || claims.Kind != kind || claims.Email == "" {
		return domain.CredentialPayload{}, false
	}
	return domain.CredentialPayload{Email: claims.Email}, true
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" || len(tm.secret) == 0 {
		return nil, errors.New("token or secret missing")
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
