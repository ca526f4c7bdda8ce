package session

import (
	"net/http"
	"time"

	"geniefy-platform/internal/config"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieWriter writes the session cookie pair.
//
// The access token cookie is readable by client-side code so the SPA can
// decode claims without a round trip; the refresh token cookie is httpOnly
// and only ever travels back to the refresh endpoint.
type CookieWriter struct {
	domain string
	secure bool

	accessTTL         time.Duration
	accessRememberTTL time.Duration

	refreshTTL         time.Duration
	refreshRememberTTL time.Duration
}

func NewCookieWriter(cfg config.SessionConfig, appEnv string) *CookieWriter {
	return &CookieWriter{
		domain:             cfg.CookieDomain,
		secure:             appEnv == "production",
		accessTTL:          cfg.AccessCookieTTL,
		accessRememberTTL:  cfg.AccessCookieRememberTTL,
		refreshTTL:         cfg.RefreshCookieTTL,
		refreshRememberTTL: cfg.RefreshCookieRememberTTL,
	}
}

// Write sets both session cookies. Remember stretches the lifetimes for
// "keep me signed in" sessions.
func (w *CookieWriter) Write(rw http.ResponseWriter, accessToken, refreshToken string, remember bool) {
	accessTTL := w.accessTTL
	refreshTTL := w.refreshTTL
	if remember {
		accessTTL = w.accessRememberTTL
		refreshTTL = w.refreshRememberTTL
	}

	http.SetCookie(rw, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		Domain:   w.domain,
		MaxAge:   int(accessTTL.Seconds()),
		Secure:   w.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(rw, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		Domain:   w.domain,
		MaxAge:   int(refreshTTL.Seconds()),
		Secure:   w.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both session cookies.
func (w *CookieWriter) Clear(rw http.ResponseWriter) {
	for _, c := range []struct {
		name     string
		httpOnly bool
	}{
		{AccessTokenCookie, false},
		{RefreshTokenCookie, true},
	} {
		http.SetCookie(rw, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     "/",
			Domain:   w.domain,
			MaxAge:   -1,
			Secure:   w.secure,
			HttpOnly: c.httpOnly,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
