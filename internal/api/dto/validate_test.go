package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLoginRequest(t *testing.T) {
	require.NoError(t, Validate(LoginRequest{Email: "a@b.com", Password: "x"}))

	field, tag, ok := FailedField(Validate(LoginRequest{Email: "a@b.com"}))
	require.True(t, ok)
	assert.Equal(t, "Password", field)
	assert.Equal(t, "required", tag)

	field, tag, ok = FailedField(Validate(LoginRequest{Email: "not-an-email", Password: "x"}))
	require.True(t, ok)
	assert.Equal(t, "Email", field)
	assert.Equal(t, "email", tag)
}

func TestCreateSubscriptionRequestArtist(t *testing.T) {
	assert.Equal(t, "spotify:artist:a", CreateSubscriptionRequest{SpotifyURI: "spotify:artist:a", SpotifyURL: "https://x"}.Artist())
	assert.Equal(t, "https://x", CreateSubscriptionRequest{SpotifyURL: "https://x"}.Artist())
	assert.Empty(t, CreateSubscriptionRequest{}.Artist())
}

func TestFailedFieldIgnoresOtherErrors(t *testing.T) {
	_, _, ok := FailedField(nil)
	assert.False(t, ok)
}
