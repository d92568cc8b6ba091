// Package backendtest runs an in-memory stand-in for the library backend REST
// API, for tests of the admin client.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"libadmin/internal/domain"
	"libadmin/internal/session"
)

// Role of a backend account.
type Role string

const (
	Administrator Role = "administrator"
	Member        Role = "member"
)

// Request is one request the fake backend received.
type Request struct {
	Method  string
	Path    string
	Form    url.Values
	Cookies []*http.Cookie
}

type account struct {
	user domain.User
	hash []byte
	role Role
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	secret []byte

	mu        sync.Mutex
	accounts  []account
	libraries []domain.Library
	requests  []Request
	overrides map[string]int
	backup    *string
}

// New starts a fake backend that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:    []byte(uuid.NewString()),
		overrides: make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/signup", s.signUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/sign-in", s.signIn).Methods(http.MethodPost)
	r.HandleFunc("/auth/users", s.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/libraries", s.listLibraries).Methods(http.MethodGet)
	r.HandleFunc("/libraries", s.addLibrary).Methods(http.MethodPost)
	r.HandleFunc("/libraries/{id}", s.viewLibrary).Methods(http.MethodGet)
	r.HandleFunc("/libraries/{id}", s.updateLibrary).Methods(http.MethodPut)
	r.HandleFunc("/libraries/{id}", s.deleteLibrary).Methods(http.MethodDelete)
	r.HandleFunc("/backup", s.dump).Methods(http.MethodGet)
	return r
}

// record logs every request and applies status overrides.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Form:    r.PostForm,
			Cookies: r.Cookies(),
		})
		status, overridden := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if overridden {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Override answers method+path with status from now on.
func (s *Server) Override(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = status
}

// SetBackup replaces the generated dump with fixed text.
func (s *Server) SetBackup(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backup = &text
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the requests received for method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// Libraries returns the stored libraries.
func (s *Server) Libraries() []domain.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Library, len(s.libraries))
	copy(out, s.libraries)
	return out
}

// AddAccount creates an account and returns its id.
func (s *Server) AddAccount(name, email, password string, role Role) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("backendtest: hash password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts = append(s.accounts, account{
		user: domain.User{ID: id, Name: name, Email: email},
		hash: hash,
		role: role,
	})
	return id
}

// AddLibrary stores a library and returns its id. An empty ID is assigned.
func (s *Server) AddLibrary(l domain.Library) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.libraries = append(s.libraries, l)
	return l.ID
}

// Token issues an access token for the account id, valid for an hour.
func (s *Server) Token(userID string) string {
	return s.TokenFor(userID, time.Hour)
}

// TokenFor issues an access token that expires after ttl. A negative ttl
// gives an already expired token.
func (s *Server) TokenFor(userID string, ttl time.Duration) string {
	now := time.Now()
	claims := session.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return token
}

// SessionCookie returns the access-token cookie for the account id.
func (s *Server) SessionCookie(userID string) *http.Cookie {
	return &http.Cookie{Name: session.AccessCookie, Value: s.Token(userID)}
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	if _, ok := s.accountByEmail(email); ok {
		writeError(w, http.StatusConflict, "account already exists")
		return
	}
	s.AddAccount(email, email, password, Member)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.accountByEmail(strings.TrimSpace(r.PostFormValue("email")))
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(r.PostFormValue("password"))) != nil {
		writeError(w, http.StatusUnauthorized, "wrong email or password")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: session.AccessCookie, Value: s.Token(acc.user.ID), Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: session.RefreshCookie, Value: uuid.NewString(), Path: "/auth/refresh", HttpOnly: true})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	s.mu.Lock()
	users := make([]domain.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	s.mu.Unlock()
	writeJSON(w, users)
}

func (s *Server) listLibraries(w http.ResponseWriter, _ *http.Request) {
	libraries := s.Libraries()
	for i := range libraries {
		libraries[i].OwnerID = ""
		libraries[i].Rating = nil
	}
	writeJSON(w, libraries)
}

func (s *Server) viewLibrary(w http.ResponseWriter, r *http.Request) {
	l, ok := s.library(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "requested resource not found")
		return
	}
	if l.Rating == nil {
		var zero int64
		l.Rating = &zero
	}
	writeJSON(w, l)
}

func (s *Server) addLibrary(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	l, err := libraryFromForm(r.PostForm)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.AddLibrary(l)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) updateLibrary(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id := mux.Vars(r)["id"]
	l, err := libraryFromForm(r.PostForm)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.libraries {
		if s.libraries[i].ID == id {
			l.ID = id
			l.Rating = s.libraries[i].Rating
			s.libraries[i] = l
			return
		}
	}
	writeError(w, http.StatusNotFound, "requested resource not found")
}

func (s *Server) deleteLibrary(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.libraries {
		if s.libraries[i].ID == id {
			s.libraries = append(s.libraries[:i], s.libraries[i+1:]...)
			return
		}
	}
	writeError(w, http.StatusNotFound, "requested resource not found")
}

// dump renders the stored libraries as SQL, the way a database dump reads.
func (s *Server) dump(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	s.mu.Lock()
	fixed := s.backup
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/octet-stream")
	if fixed != nil {
		_, _ = w.Write([]byte(*fixed))
		return
	}

	libraries := s.Libraries()
	sort.SliceStable(libraries, func(i, j int) bool { return libraries[i].Name < libraries[j].Name })
	var b strings.Builder
	b.WriteString("-- libraries dump\n")
	for _, l := range libraries {
		fmt.Fprintf(&b, "INSERT INTO %s (id, name, address, daily_rate, overdue_rate, currency, owner_id) VALUES (%s, %s, %s, %s, %s, %s, %s);\n",
			pq.QuoteIdentifier("libraries"),
			pq.QuoteLiteral(l.ID),
			pq.QuoteLiteral(l.Name),
			pq.QuoteLiteral(l.Address),
			pq.QuoteLiteral(l.DailyRate.String()),
			pq.QuoteLiteral(l.OverdueRate.String()),
			pq.QuoteLiteral(string(l.Currency)),
			pq.QuoteLiteral(l.OwnerID),
		)
	}
	_, _ = w.Write([]byte(b.String()))
}

// requireAdmin answers 401 without a valid token and 403 for non-admins.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(session.AccessCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "sign in to continue")
		return false
	}
	claims := session.Claims{}
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "sign in to continue")
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == claims.UserID {
			if acc.role != Administrator {
				writeError(w, http.StatusForbidden, "no permission for the resource")
				return false
			}
			return true
		}
	}
	writeError(w, http.StatusUnauthorized, "sign in to continue")
	return false
}

func (s *Server) accountByEmail(email string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			return acc, true
		}
	}
	return account{}, false
}

func (s *Server) library(id string) (domain.Library, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.libraries {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Library{}, false
}

func libraryFromForm(form url.Values) (domain.Library, error) {
	l := domain.Library{
		Name:        form.Get(domain.FieldName),
		Address:     form.Get(domain.FieldAddress),
		DailyRate:   domain.Decimal(form.Get(domain.FieldDailyRate)),
		OverdueRate: domain.Decimal(form.Get(domain.FieldOverdueRate)),
		Currency:    domain.Currency(form.Get(domain.FieldCurrency)),
		OwnerID:     form.Get(domain.FieldOwnerID),
	}
	if err := l.Validate(); err != nil {
		return domain.Library{}, err
	}
	return l, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
