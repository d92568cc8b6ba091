// Package session models the backend credential as an explicit capability.
//
// The browser keeps the backend cookies; libadmin only forwards them on each
// backend call and never decides on its own whether a session is valid.
package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/net/publicsuffix"
)

const (
	// AccessCookie carries the backend access token.
	AccessCookie = "access-token"
	// RefreshCookie carries the backend refresh token.
	RefreshCookie = "refresh-token"
)

// Session attaches the backend credential to an outgoing request.
type Session interface {
	Attach(r *http.Request)
}

// Claims - decoded access token payload
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Anonymous attaches no credential.
type Anonymous struct{}

// Attach implements Session.
func (Anonymous) Attach(*http.Request) {}

// Cookies is the set of backend cookies presented by the browser.
type Cookies []*http.Cookie

// Attach implements Session.
func (c Cookies) Attach(r *http.Request) {
	for _, cookie := range c {
		r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}

// Token returns the raw access token, or "" when absent.
func (c Cookies) Token() string {
	for _, cookie := range c {
		if cookie.Name == AccessCookie {
			return cookie.Value
		}
	}
	return ""
}

// Subject returns the account id of an unexpired access token.
//
// The token is not verified; the subject only scopes data libadmin already
// fetched with this session, the backend decides everything else.
func (c Cookies) Subject(now time.Time) (string, bool) {
	claims, ok := Inspect(c.Token())
	if !ok || claims.UserID == "" || claims.Expired(now) {
		return "", false
	}
	return claims.UserID, true
}

// FromRequest collects the backend cookies from a browser request.
func FromRequest(r *http.Request) Cookies {
	var cookies Cookies
	for _, name := range []string{AccessCookie, RefreshCookie} {
		if cookie, err := r.Cookie(name); err == nil && strings.TrimSpace(cookie.Value) != "" {
			cookies = append(cookies, cookie)
		}
	}
	return cookies
}

// Relay copies backend session cookies onto the browser response.
//
// The browser only ever talks to libadmin, so paths are rewritten to "/" and
// the backend domain is dropped.
func Relay(w http.ResponseWriter, cookies []*http.Cookie) int {
	relayed := 0
	for _, cookie := range cookies {
		if cookie.Name != AccessCookie && cookie.Name != RefreshCookie {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     "/",
			Expires:  cookie.Expires,
			MaxAge:   cookie.MaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		relayed++
	}
	return relayed
}

// Inspect decodes the access token without verifying its signature.
//
// libadmin holds no signing key; the result is for display only.
func Inspect(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}
	claims := Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}

// Expired reports whether the claims carry an expiry in the past.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}

// Jar is a cookie-jar session used outside the browser (CLI).
type Jar struct {
	jar http.CookieJar
}

// NewJar creates an empty cookie-jar session.
func NewJar() (*Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Jar{jar: jar}, nil
}

// Attach implements Session.
func (j *Jar) Attach(r *http.Request) {
	for _, cookie := range j.jar.Cookies(r.URL) {
		r.AddCookie(cookie)
	}
}

// Store keeps cookies returned by the backend for later calls to u.
func (j *Jar) Store(u *url.URL, cookies []*http.Cookie) {
	// Cookies scoped to another path (refresh-token) are still needed by
	// every call made through the jar.
	rooted := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		c.Path = "/"
		c.Domain = ""
		rooted = append(rooted, &c)
	}
	j.jar.SetCookies(u, rooted)
}
