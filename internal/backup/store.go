// Package backup fetches raw backend backups and keeps them for download.
package backup

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"libadmin/internal/api"
)

const (
	// FileName is the name offered for downloaded backups.
	FileName = "backup.sql"
	// HolderCookie identifies the browser a held backup belongs to.
	HolderCookie = "backup-holder"

	// TTL bounds how long a fetched backup stays downloadable.
	TTL = 15 * time.Minute
	// MaxHeld caps the number of backups held at once.
	MaxHeld = 32
)

// File is a held backup serialized for download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type dump struct {
	subject string
	text    string
	fetched time.Time
}

// Store keeps the last fetched backup per holder, in memory only.
//
// A backup is bound to the account that fetched it and is only handed back
// to a request carrying that same account.
type Store struct {
	mu    sync.Mutex
	dumps map[string]dump
	ttl   time.Duration
	max   int
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		dumps: make(map[string]dump),
		ttl:   TTL,
		max:   MaxHeld,
		now:   time.Now,
	}
}

// NewHolder returns a fresh holder id.
func NewHolder() string {
	return uuid.NewString()
}

// ValidHolder reports whether id looks like a holder issued by NewHolder.
func ValidHolder(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Fetch requests the backup text in one response and holds it for holder on
// behalf of subject, replacing whatever the holder had before.
func (s *Store) Fetch(ctx context.Context, caller *api.Caller, holder, subject string) (string, error) {
	text, err := caller.Text(ctx, api.Call{
		Method: http.MethodGet,
		Path:   api.BackupPath,
		Label:  "Failed to fetch backup",
	})
	if err != nil {
		return "", err
	}
	if subject == "" {
		return text, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	delete(s.dumps, holder)
	for len(s.dumps) >= s.max {
		s.evictOldest()
	}
	s.dumps[holder] = dump{subject: subject, text: text, fetched: now}
	return text, nil
}

// Held returns the backup held for holder when subject fetched it and it has
// not expired yet.
func (s *Store) Held(holder, subject string) (string, bool) {
	if subject == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	d, ok := s.dumps[holder]
	if !ok || d.subject != subject {
		return "", false
	}
	return d.text, true
}

// Download serializes the held backup into a file without any network call.
// Nothing is offered while no backup (or an empty one) is held for subject.
func (s *Store) Download(holder, subject string) (File, bool) {
	text, ok := s.Held(holder, subject)
	if !ok || text == "" {
		return File{}, false
	}
	return File{
		Name:        FileName,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(text),
	}, true
}

// sweep drops expired backups. Caller holds mu.
func (s *Store) sweep(now time.Time) {
	for holder, d := range s.dumps {
		if now.Sub(d.fetched) >= s.ttl {
			delete(s.dumps, holder)
		}
	}
}

// evictOldest drops the backup fetched first. Caller holds mu.
func (s *Store) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for holder, d := range s.dumps {
		if oldest == "" || d.fetched.Before(at) {
			oldest, at = holder, d.fetched
		}
	}
	delete(s.dumps, oldest)
}
