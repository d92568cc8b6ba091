package locale

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Embedded holds the built-in dictionaries under locales/{lang}/.
//
//go:embed locales
var Embedded embed.FS

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,16}$`)

// ValidTag reports whether lang is safe to use in a resource path.
func ValidTag(lang string) bool {
	return tagPattern.MatchString(lang)
}

// ResourcePath returns the dictionary resource path for lang.
func ResourcePath(lang string) string {
	return path.Join("locales", lang, "dictionary.json")
}

// Source loads the dictionary of one language.
type Source interface {
	Load(ctx context.Context, lang string) (Dictionary, error)
}

// FSSource reads dictionaries from a file system.
type FSSource struct {
	FS fs.FS
}

// Load implements Source.
func (s FSSource) Load(_ context.Context, lang string) (Dictionary, error) {
	if !ValidTag(lang) {
		return nil, fmt.Errorf("invalid language tag %q", lang)
	}
	f, err := s.FS.Open(ResourcePath(lang))
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", lang, err)
	}
	defer f.Close()
	return decode(f, lang)
}

// HTTPSource fetches {BaseURL}/locales/{lang}/dictionary.json.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Load implements Source.
func (s HTTPSource) Load(ctx context.Context, lang string) (Dictionary, error) {
	if !ValidTag(lang) {
		return nil, fmt.Errorf("invalid language tag %q", lang)
	}
	base, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse locales url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.JoinPath(ResourcePath(lang)).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build dictionary request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary %s: %w", lang, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dictionary %s: %s", lang, resp.Status)
	}
	return decode(resp.Body, lang)
}

func decode(r io.Reader, lang string) (Dictionary, error) {
	dict := Dictionary{}
	if err := json.NewDecoder(r).Decode(&dict); err != nil {
		return nil, fmt.Errorf("decode dictionary %s: %w", lang, err)
	}
	return dict, nil
}
