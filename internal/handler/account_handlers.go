package handler

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"libadmin/internal/api"
	"libadmin/internal/models"
	"libadmin/internal/session"
)

// LoginHandler - sign in through the backend and keep its session cookies
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	data := models.PageData{
		Title:       pc.dict.T("login"),
		CurrentPage: "login",
	}

	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.PostFormValue("email"))
		data.Email = email

		// Signing in never reuses a previous session.
		caller := h.API.Bind(session.Anonymous{}, pc.nav)
		cookies, err := caller.Exchange(r.Context(), api.Call{
			Method: http.MethodPost,
			Path:   api.SignInPath,
			Form:   url.Values{"email": {email}, "password": {r.PostFormValue("password")}},
			Label:  "Failed to sign in",
		})
		if err == nil {
			if session.Relay(w, cookies) == 0 {
				log.Printf("⚠️  Sign in for %s returned no session cookies", email)
			}
			log.Printf("✅ Signed in: %s", email)
			pc.nav.Navigate(PageLibraries)
		}
	}

	h.render(w, r, pc, data)
}

// SignupHandler - create an account, then go to the login page
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	data := models.PageData{
		Title:       pc.dict.T("signup"),
		CurrentPage: "signup",
	}

	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.PostFormValue("email"))
		data.Email = email

		err := pc.caller.Send(r.Context(), api.Call{
			Method: http.MethodPost,
			Path:   api.SignupPath,
			Form:   url.Values{"email": {email}, "password": {r.PostFormValue("password")}},
			Label:  "Failed to signup",
		})
		if err == nil {
			log.Printf("✅ Account created: %s", email)
			pc.nav.Navigate(PageLogin)
		}
	}

	h.render(w, r, pc, data)
}
