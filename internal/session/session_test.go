package session_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"libadmin/internal/backendtest"
	"libadmin/internal/session"
)

func TestFromRequestKeepsOnlyBackendCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/libraries", nil)
	r.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: "a"})
	r.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "r"})
	r.AddCookie(&http.Cookie{Name: "language", Value: "ua"})
	r.AddCookie(&http.Cookie{Name: "other", Value: "x"})

	cookies := session.FromRequest(r)
	if len(cookies) != 2 {
		t.Fatalf("FromRequest() = %d cookies, want 2", len(cookies))
	}
	if cookies.Token() != "a" {
		t.Errorf("Token() = %q", cookies.Token())
	}

	out := httptest.NewRequest(http.MethodGet, "http://backend/libraries", nil)
	cookies.Attach(out)
	if c, err := out.Cookie(session.RefreshCookie); err != nil || c.Value != "r" {
		t.Errorf("refresh cookie not attached: %v", err)
	}
	if _, err := out.Cookie("language"); err == nil {
		t.Error("language cookie forwarded to backend")
	}
}

func TestAnonymousAttachesNothing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://backend/libraries", nil)
	session.Anonymous{}.Attach(r)
	if len(r.Cookies()) != 0 {
		t.Errorf("cookies = %v", r.Cookies())
	}
}

func TestRelayRewritesCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	n := session.Relay(rec, []*http.Cookie{
		{Name: session.AccessCookie, Value: "a", Path: "/", Domain: "backend.local"},
		{Name: session.RefreshCookie, Value: "r", Path: "/auth/refresh"},
		{Name: "tracking", Value: "t"},
	})
	if n != 2 {
		t.Fatalf("Relay() = %d, want 2", n)
	}

	got := rec.Result().Cookies()
	if len(got) != 2 {
		t.Fatalf("Set-Cookie count = %d", len(got))
	}
	for _, c := range got {
		if c.Path != "/" {
			t.Errorf("%s path = %q", c.Name, c.Path)
		}
		if c.Domain != "" {
			t.Errorf("%s domain = %q", c.Name, c.Domain)
		}
		if !c.HttpOnly {
			t.Errorf("%s not HttpOnly", c.Name)
		}
	}
}

func TestInspect(t *testing.T) {
	backend := backendtest.New(t)
	id := backend.AddAccount("Admin", "admin@example.com", "secret", backendtest.Administrator)

	claims, ok := session.Inspect(backend.Token(id))
	if !ok {
		t.Fatal("Inspect() failed on a backend token")
	}
	if claims.UserID != id {
		t.Errorf("UserID = %q, want %q", claims.UserID, id)
	}
	if claims.Expired(time.Now()) {
		t.Error("fresh token reported expired")
	}
	if !claims.Expired(time.Now().Add(2 * time.Hour)) {
		t.Error("token not expired two hours later")
	}

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, ok := session.Inspect(bad); ok {
			t.Errorf("Inspect(%q) succeeded", bad)
		}
	}
}

func TestSubject(t *testing.T) {
	backend := backendtest.New(t)
	id := backend.AddAccount("Admin", "admin@example.com", "secret", backendtest.Administrator)

	tests := []struct {
		name    string
		cookies session.Cookies
		want    string
		ok      bool
	}{
		{"fresh token", session.Cookies{backend.SessionCookie(id)}, id, true},
		{"expired token", session.Cookies{{Name: session.AccessCookie, Value: backend.TokenFor(id, -time.Minute)}}, "", false},
		{"refresh only", session.Cookies{{Name: session.RefreshCookie, Value: "r"}}, "", false},
		{"garbage", session.Cookies{{Name: session.AccessCookie, Value: "a.b.c"}}, "", false},
		{"none", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cookies.Subject(time.Now())
			if got != tt.want || ok != tt.ok {
				t.Errorf("Subject() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestJarStoresCookiesForEveryPath(t *testing.T) {
	jar, err := session.NewJar()
	if err != nil {
		t.Fatalf("NewJar() error = %v", err)
	}
	base, _ := url.Parse("http://backend.test/")
	jar.Store(base, []*http.Cookie{
		{Name: session.AccessCookie, Value: "a", Path: "/"},
		{Name: session.RefreshCookie, Value: "r", Path: "/auth/refresh"},
	})

	r := httptest.NewRequest(http.MethodGet, "http://backend.test/backup", nil)
	jar.Attach(r)
	if c, err := r.Cookie(session.AccessCookie); err != nil || c.Value != "a" {
		t.Errorf("access cookie missing: %v", err)
	}
	if c, err := r.Cookie(session.RefreshCookie); err != nil || c.Value != "r" {
		t.Errorf("refresh cookie missing: %v", err)
	}

	other := httptest.NewRequest(http.MethodGet, "http://elsewhere.test/backup", nil)
	jar.Attach(other)
	if len(other.Cookies()) != 0 {
		t.Errorf("cookies leaked to another host: %v", other.Cookies())
	}
}
