package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"libadmin/internal/backendtest"
	"libadmin/internal/domain"
	"libadmin/internal/session"
)

func newTestClient(t *testing.T, baseURL string) (*Client, *bytes.Buffer) {
	t.Helper()
	var sink bytes.Buffer
	client, err := NewClient(baseURL, nil, WithLogger(log.New(&sink, "", 0)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, &sink
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080/api", "/api"} {
		if _, err := NewClient(raw, nil); err == nil {
			t.Errorf("NewClient(%q) expected error", raw)
		}
	}
}

func TestCallerRejectedSessionNavigatesToLogin(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend := backendtest.New(t)
			backend.Override(http.MethodGet, "/libraries/7", status)
			client, sink := newTestClient(t, backend.URL)

			nav := &Redirector{}
			var out map[string]any
			err := client.Bind(nil, nav).JSON(context.Background(), Call{
				Path:  LibraryPath("7"),
				Label: "Failed to fetch library details",
			}, &out)

			if !IsUnauthorized(err) {
				t.Fatalf("error = %v, want ErrUnauthorized", err)
			}
			if StatusOf(err) != status {
				t.Errorf("StatusOf() = %d, want %d", StatusOf(err), status)
			}
			if nav.Target() != DefaultLoginPath {
				t.Errorf("navigated to %q, want %q", nav.Target(), DefaultLoginPath)
			}
			if out != nil {
				t.Errorf("output decoded on rejected call: %v", out)
			}
			if !strings.Contains(sink.String(), "Failed to fetch library details") {
				t.Errorf("diagnostic sink missing label: %q", sink.String())
			}
		})
	}
}

func TestCallerCustomLoginPath(t *testing.T) {
	backend := backendtest.New(t)
	client, err := NewClient(backend.URL, nil, WithLoginPath("/sign-in"), WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	nav := &Redirector{}
	var users []domain.User
	if err := client.Bind(session.Anonymous{}, nav).JSON(context.Background(), Call{Path: UsersPath}, &users); err == nil {
		t.Fatal("expected error for anonymous users call")
	}
	if nav.Target() != "/sign-in" {
		t.Errorf("navigated to %q, want /sign-in", nav.Target())
	}
}

func TestCallerOtherFailuresDoNotNavigate(t *testing.T) {
	backend := backendtest.New(t)
	backend.Override(http.MethodGet, "/libraries", http.StatusInternalServerError)
	client, sink := newTestClient(t, backend.URL)

	nav := &Redirector{}
	var out []domain.Library
	err := client.Bind(nil, nav).JSON(context.Background(), Call{Path: LibrariesPath, Label: "Failed to fetch libraries"}, &out)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", reqErr.Status)
	}
	if reqErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("Message = %q", reqErr.Message)
	}
	if IsUnauthorized(err) {
		t.Error("500 reported as unauthorized")
	}
	if nav.Target() != "" {
		t.Errorf("unexpected navigation to %q", nav.Target())
	}
	if !strings.Contains(sink.String(), "Failed to fetch libraries") {
		t.Errorf("diagnostic sink = %q", sink.String())
	}
}

func TestCallerTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()
	client, _ := newTestClient(t, baseURL)

	err := client.Bind(nil, nil).Send(context.Background(), Call{Path: LibrariesPath, Label: "Failed to fetch libraries"})
	if StatusOf(err) != 0 || err == nil {
		t.Fatalf("error = %v, want transport error without status", err)
	}
}

func TestCallerSendsFormAndSession(t *testing.T) {
	var gotType, gotCookie string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		if c, err := r.Cookie(session.AccessCookie); err == nil {
			gotCookie = c.Value
		}
		_ = r.ParseForm()
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	client, _ := newTestClient(t, srv.URL)

	sess := session.Cookies{{Name: session.AccessCookie, Value: "tok"}}
	form := url.Values{"name": {"Central"}, "currency": {"UAH"}}
	if err := client.Bind(sess, nil).Send(context.Background(), Call{Method: http.MethodPost, Path: LibrariesPath, Form: form}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotCookie != "tok" {
		t.Errorf("access cookie = %q", gotCookie)
	}
	if gotForm.Get("name") != "Central" || gotForm.Get("currency") != "UAH" {
		t.Errorf("form = %v", gotForm)
	}
}

func TestCallerText(t *testing.T) {
	backend := backendtest.New(t)
	admin := backend.AddAccount("Admin", "admin@example.com", "secret", backendtest.Administrator)
	backend.SetBackup("-- dump --")
	client, _ := newTestClient(t, backend.URL)

	text, err := client.Bind(session.Cookies{backend.SessionCookie(admin)}, nil).Text(context.Background(), Call{Path: BackupPath})
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if text != "-- dump --" {
		t.Errorf("Text() = %q", text)
	}
}

func TestCallerExchangeReturnsCookies(t *testing.T) {
	backend := backendtest.New(t)
	backend.AddAccount("Admin", "admin@example.com", "secret", backendtest.Administrator)
	client, _ := newTestClient(t, backend.URL)

	cookies, err := client.Bind(nil, nil).Exchange(context.Background(), Call{
		Method: http.MethodPost,
		Path:   SignInPath,
		Form:   url.Values{"email": {"admin@example.com"}, "password": {"secret"}},
	})
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names[session.AccessCookie] || !names[session.RefreshCookie] {
		t.Errorf("cookies = %v", names)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json error", body: `{"error":"wrong email or password"}`, want: "wrong email or password"},
		{name: "plain text", body: "  bad gateway \n", want: "bad gateway"},
		{name: "empty", body: "", want: ""},
		{name: "json without error", body: `{"status":"x"}`, want: `{"status":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage(strings.NewReader(tt.body)); got != tt.want {
				t.Errorf("errorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		want string
	}{
		{name: "transport", err: &RequestError{Label: "L", Err: errors.New("refused")}, want: "L: refused"},
		{name: "rejected", err: &RequestError{Label: "L", Status: 403, Err: ErrUnauthorized}, want: "L: status 403: session rejected by backend"},
		{name: "message", err: &RequestError{Label: "L", Status: 422, Message: "bad currency"}, want: "L: status 422: bad currency"},
		{name: "bare", err: &RequestError{Label: "L", Status: 500}, want: "L: status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedirectorFirstTargetWins(t *testing.T) {
	nav := &Redirector{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/libraries", nil)
	if nav.Redirect(rec, req) {
		t.Fatal("Redirect() without target reported true")
	}

	nav.Navigate("/login")
	nav.Navigate("/libraries")
	if !nav.Redirect(rec, req) {
		t.Fatal("Redirect() = false")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestLibraryPathEscapes(t *testing.T) {
	if got := LibraryPath("a/b"); got != "/libraries/a%2Fb" {
		t.Errorf("LibraryPath() = %q", got)
	}
}
