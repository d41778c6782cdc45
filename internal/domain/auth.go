package domain

import "time"

// TokenKind differentiates access and refresh tokens inside the signed claims.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// CredentialPayload is the identity embedded in both token kinds.
type CredentialPayload struct {
	Email string `json:"email"`
}

// TokenPair is returned by a successful login or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
