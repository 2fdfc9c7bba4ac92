package handler

import (
	"net/http"
	"time"
)

// refreshCookieName is the httpOnly cookie carrying the refresh token. The
// path is scoped to the auth routes so the long-lived credential is never
// sent with ordinary API requests.
const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/auth"
)

// newRefreshCookie builds the refresh-token cookie. HttpOnly keeps it away
// from client script; SameSite=Strict stops cross-site sends; max-age tracks
// the token's own expiry.
func newRefreshCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// clearedRefreshCookie expires the refresh-token cookie immediately.
func clearedRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
