package handler

import (
	"context"
	"net/http"
	"time"

	"libadmin/internal/api"
	"libadmin/internal/locale"
	"libadmin/internal/page"
	"libadmin/internal/session"
	"libadmin/internal/timeouts"
)

// pageContext - everything one mounted page owns
type pageContext struct {
	nav        *api.Redirector
	scope      *page.Scope
	caller     *api.Caller
	lang       string
	dict       locale.Dictionary
	signedInAs string // account id of an unexpired access token
}

// mount binds the page to the browser's backend session. Every backend call
// the page makes goes through pc.caller, so a 401/403 anywhere navigates to
// the login page. The returned func unmounts the page.
func (h *Handler) mount(r *http.Request) (*pageContext, func()) {
	scope := page.NewScope()
	stop := scope.BindContext(r.Context())

	cookies := session.FromRequest(r)
	nav := &api.Redirector{}
	pc := &pageContext{
		nav:    nav,
		scope:  scope,
		caller: h.API.Bind(cookies, nav),
		lang:   locale.FromRequest(r, h.DefaultLanguage),
	}
	pc.signedInAs, _ = cookies.Subject(time.Now())

	// Render with whatever is resolved within the wait; a failed or slow load
	// leaves the empty dictionary, whose keys resolve to the placeholder.
	pc.dict = h.Locales.Peek(pc.lang)
	if len(pc.dict) == 0 {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Dictionary)
		pc.dict, _ = h.Locales.Load(ctx, pc.lang)
		cancel()
	}

	return pc, func() {
		stop()
		scope.Unmount()
	}
}
