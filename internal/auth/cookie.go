package auth

import (
	"fmt"
	"time"
)

// RefreshCookie renders the Set-Cookie value carrying the refresh token.
// The attribute order matches what the dashboard front-end was built against.
func RefreshCookie(name, value string, maxAge time.Duration) string {
	seconds := int64(maxAge / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%s=%s; HttpOnly; Secure; SameSite=Strict; Path=/; Max-Age=%d", name, value, seconds)
}

// ClearedRefreshCookie overwrites the refresh cookie with an expired one.
func ClearedRefreshCookie(name string) string {
	return RefreshCookie(name, "", 0)
}
