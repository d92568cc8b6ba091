package backend

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"libadmin/config"
)

func testConfig(url string) *config.Config {
	return &config.Config{Backend: config.BackendConfig{URL: url, Timeout: time.Second, LoginPath: "/login"}}
}

func TestConnectReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	var sink bytes.Buffer
	client, err := Connect(context.Background(), testConfig(srv.URL), log.New(&sink, "", 0))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if client == nil {
		t.Fatal("Connect() returned no client")
	}
	if !strings.Contains(sink.String(), "Backend reachable") {
		t.Errorf("log = %q", sink.String())
	}
}

func TestConnectUnreachableStillReturnsClient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var sink bytes.Buffer
	client, err := Connect(context.Background(), testConfig(url), log.New(&sink, "", 0))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if client == nil {
		t.Fatal("Connect() returned no client")
	}
	if !strings.Contains(sink.String(), "not reachable") {
		t.Errorf("log = %q", sink.String())
	}
}

func TestConnectInvalidURL(t *testing.T) {
	if _, err := Connect(context.Background(), testConfig("not a url"), nil); err == nil {
		t.Error("Connect() accepted a relative url")
	}
}
