package config

import (
	"os"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{
		"LIBADMIN_HTTP_ADDR", "LIBADMIN_ENV", "LIBADMIN_API_URL", "LIBADMIN_API_TIMEOUT",
		"LIBADMIN_LOGIN_PATH", "LIBADMIN_DEFAULT_LANGUAGE", "LIBADMIN_LOCALES_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Backend.URL != "http://localhost:8080" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s", cfg.Backend.Timeout)
	}
	if cfg.Backend.LoginPath != "/login" {
		t.Errorf("LoginPath = %q", cfg.Backend.LoginPath)
	}
	if cfg.Locale.DefaultLanguage != "en" || cfg.Locale.URL != "" {
		t.Errorf("Locale = %+v", cfg.Locale)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("LIBADMIN_API_URL", "https://library.example.com/api")
	t.Setenv("LIBADMIN_API_TIMEOUT", "3s")
	t.Setenv("LIBADMIN_DEFAULT_LANGUAGE", "ua")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Backend.URL != "https://library.example.com/api" || cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("Backend = %+v", cfg.Backend)
	}
	if cfg.Locale.DefaultLanguage != "ua" {
		t.Errorf("DefaultLanguage = %q", cfg.Locale.DefaultLanguage)
	}
}

func TestParseRejectsBadTimeout(t *testing.T) {
	for _, value := range []string{"0s", "-1s", "soon"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("LIBADMIN_API_TIMEOUT", value)
			if _, err := Parse(); err == nil {
				t.Errorf("Parse() accepted timeout %q", value)
			}
		})
	}
}
