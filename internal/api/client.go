package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"libadmin/internal/session"
)

// DefaultLoginPath is where a rejected session navigates to.
const DefaultLoginPath = "/login"

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// Call describes one backend request.
//
// A non-nil Form is sent form-encoded. Label is the diagnostic description
// logged on failure ("Failed to fetch libraries").
type Call struct {
	Method string
	Path   string
	Form   url.Values
	Label  string
}

// Client talks to the backend REST API.
type Client struct {
	base      *url.URL
	http      *http.Client
	log       *log.Logger
	loginPath string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the diagnostic sink for failed calls.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithLoginPath overrides the navigation target for rejected sessions.
func WithLoginPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.loginPath = path
		}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		base:      base,
		http:      httpClient,
		log:       log.Default(),
		loginPath: DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves a backend path against the base URL.
func (c *Client) URL(path string) *url.URL {
	return c.base.JoinPath(path)
}

// Bind returns a Caller carrying sess and reporting navigation to nav.
func (c *Client) Bind(sess session.Session, nav Navigator) *Caller {
	if sess == nil {
		sess = session.Anonymous{}
	}
	if nav == nil {
		nav = discardNavigator{}
	}
	return &Caller{client: c, sess: sess, nav: nav}
}

// Ping checks that the backend answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(LibrariesPath).String(), nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Caller performs backend calls for one page under one session.
type Caller struct {
	client *Client
	sess   session.Session
	nav    Navigator
}

// Navigate reports a page navigation through the caller's navigator.
func (c *Caller) Navigate(path string) {
	c.nav.Navigate(path)
}

// JSON performs call and decodes a 2xx body into out.
func (c *Caller) JSON(ctx context.Context, call Call, out any) error {
	return c.do(ctx, call, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// Text performs call and returns a 2xx body as text.
func (c *Caller) Text(ctx context.Context, call Call) (string, error) {
	var text string
	err := c.do(ctx, call, func(resp *http.Response) error {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		text = string(body)
		return nil
	})
	return text, err
}

// Send performs call and ignores a 2xx body.
func (c *Caller) Send(ctx context.Context, call Call) error {
	return c.do(ctx, call, func(*http.Response) error { return nil })
}

// Exchange performs call and returns the cookies set by a 2xx answer.
func (c *Caller) Exchange(ctx context.Context, call Call) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	err := c.do(ctx, call, func(resp *http.Response) error {
		cookies = resp.Cookies()
		return nil
	})
	return cookies, err
}

func (c *Caller) do(ctx context.Context, call Call, handle func(*http.Response) error) error {
	err := c.roundTrip(ctx, call, handle)
	if err != nil {
		c.client.log.Printf("❌ %v", err)
	}
	return err
}

func (c *Caller) roundTrip(ctx context.Context, call Call, handle func(*http.Response) error) error {
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	label := call.Label
	if label == "" {
		label = method + " " + call.Path
	}

	var body io.Reader
	if call.Form != nil {
		body = strings.NewReader(call.Form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.client.URL(call.Path).String(), body)
	if err != nil {
		return &RequestError{Label: label, Err: fmt.Errorf("build request: %w", err)}
	}
	if call.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.sess.Attach(req)

	resp, err := c.client.http.Do(req)
	if err != nil {
		return &RequestError{Label: label, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.nav.Navigate(c.client.loginPath)
		return &RequestError{
			Status:  resp.StatusCode,
			Label:   label,
			Message: errorMessage(resp.Body),
			Err:     ErrUnauthorized,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RequestError{
			Status:  resp.StatusCode,
			Label:   label,
			Message: errorMessage(resp.Body),
		}
	}

	if err := handle(resp); err != nil {
		return &RequestError{Status: resp.StatusCode, Label: label, Err: err}
	}
	return nil
}

// errorMessage extracts the backend's {"error": "..."} text, if any.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
