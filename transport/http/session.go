package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingBearer   = errors.New("missing authorization header")
	ErrMalformedBearer = errors.New("malformed authorization header")
)

// SessionTransport moves refresh tokens in and out of the session cookie
type SessionTransport struct {
	cookieName string
	sameSite   http.SameSite
	lifetime   time.Duration
}

// NewSessionTransport creates a transport for cookies that live as long as refresh tokens
func NewSessionTransport(cookieName string, sameSite http.SameSite, lifetime time.Duration) *SessionTransport {
	return &SessionTransport{
		cookieName: cookieName,
		sameSite:   sameSite,
		lifetime:   lifetime,
	}
}

// ParseSameSite maps a config value to a cookie SameSite mode
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return http.SameSiteNoneMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	default:
		return 0, fmt.Errorf("invalid SameSite mode %q", s)
	}
}

// AttachRefreshCookie sets the refresh token cookie on the response
func (t *SessionTransport) AttachRefreshCookie(w http.ResponseWriter, token string) {
	cookie := t.cookie(token)
	cookie.MaxAge = int(t.lifetime.Seconds())
	cookie.Expires = time.Now().Add(t.lifetime)
	http.SetCookie(w, cookie)
}

// ClearRefreshCookie expires the refresh token cookie. Flags must match the
// ones used when attaching or browsers keep the old cookie.
func (t *SessionTransport) ClearRefreshCookie(w http.ResponseWriter) {
	cookie := t.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// RefreshToken reads the refresh token cookie
func (t *SessionTransport) RefreshToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(t.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (t *SessionTransport) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     t.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: t.sameSite,
	}
}

// ExtractBearerToken reads the access token from the Authorization header
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingBearer
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrMalformedBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedBearer
	}
	return token, nil
}
