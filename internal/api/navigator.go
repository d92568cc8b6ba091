package api

import (
	"net/http"
	"sync"
)

// Navigator receives navigation side effects raised by backend calls.
type Navigator interface {
	Navigate(path string)
}

type discardNavigator struct{}

func (discardNavigator) Navigate(string) {}

// Redirector records the navigation requested while serving one page.
//
// The first target wins; later requests are ignored.
type Redirector struct {
	mu     sync.Mutex
	target string
}

// Navigate implements Navigator.
func (r *Redirector) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == "" {
		r.target = path
	}
}

// Target returns the recorded navigation target, or "".
func (r *Redirector) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Redirect issues the recorded navigation, reporting whether one happened.
func (r *Redirector) Redirect(w http.ResponseWriter, req *http.Request) bool {
	target := r.Target()
	if target == "" {
		return false
	}
	http.Redirect(w, req, target, http.StatusSeeOther)
	return true
}
