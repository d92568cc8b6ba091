package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"libadmin/internal/api"
	"libadmin/internal/domain"
	"libadmin/internal/form"
	"libadmin/internal/listing"
	"libadmin/internal/models"
)

// Client-side page paths.
const (
	PageLibraries  = "/libraries"
	PageNewLibrary = "/new-library"
	PageBackup     = "/backup"
	PageLogin      = "/login"
	PageSignup     = "/signup"
)

func pageLibrary(id string) string {
	return PageLibraries + "/" + url.PathEscape(id)
}

// libraryResource - backend collection behind the library forms
var libraryResource = form.Resource{
	Path:        api.LibrariesPath,
	ListPage:    PageLibraries,
	Noun:        "library",
	EditExclude: []string{domain.FieldRating},
}

// librarySchema - fields of the create and edit library forms
func librarySchema() form.Schema {
	currencies := make([]form.Option, 0, 3)
	for _, c := range domain.Currencies() {
		currencies = append(currencies, form.Option{Value: string(c), Label: string(c)})
	}
	return form.Schema{Fields: []form.Field{
		{Name: domain.FieldName, Input: form.Text, Label: "name"},
		{Name: domain.FieldAddress, Input: form.Text, Label: "address"},
		{Name: domain.FieldDailyRate, Input: form.Text, Label: "dailyRate"},
		{Name: domain.FieldOverdueRate, Input: form.Text, Label: "overdueRate"},
		{Name: domain.FieldCurrency, Input: form.Select, Label: "currency", Options: currencies},
		{Name: domain.FieldOwnerID, Input: form.Select, Label: "owner"},
	}}
}

func ownerOption(u domain.User) form.Option {
	return form.Option{Value: u.ID, Label: u.Label()}
}

// loadOwners fills the owner select from the user list.
func loadOwners(r *http.Request, ctl *form.Controller) error {
	return form.LoadOptions(r.Context(), ctl, domain.FieldOwnerID, api.Call{
		Method: http.MethodGet,
		Path:   api.UsersPath,
		Label:  "Failed to fetch users",
	}, ownerOption)
}

// LibrariesHandler - list of libraries
func (h *Handler) LibrariesHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	loader := listing.NewLoader[domain.Library](pc.caller, pc.scope, api.LibrariesPath, "Failed to fetch libraries")
	if err := loader.Load(r.Context()); err == nil {
		log.Printf("✅ Libraries loaded: %d", loader.Len())
	}

	h.render(w, r, pc, models.PageData{
		Title:       pc.dict.T("librariesTitle"),
		CurrentPage: "libraries",
		Libraries:   loader.Records(),
	})
}

// NewLibraryHandler - create library form
func (h *Handler) NewLibraryHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	ctl := form.NewCreate(librarySchema(), libraryResource, pc.caller, pc.scope)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		ctl.SetForm(r.PostForm)
		if err := ctl.Submit(r.Context()); err == nil {
			log.Printf("✅ Library created successfully")
		}
		if pc.nav.Redirect(w, r) {
			return
		}
	}

	_ = loadOwners(r, ctl)

	h.render(w, r, pc, models.PageData{
		Title:       pc.dict.T("addLibrary"),
		CurrentPage: "library_form",
		Form:        formData(ctl, PageNewLibrary, "createLibrary"),
	})
}

// EditLibraryHandler - library details and update form
func (h *Handler) EditLibraryHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	id := mux.Vars(r)["id"]
	ctl := form.NewEdit(librarySchema(), libraryResource, id, pc.caller, pc.scope)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		ctl.SetForm(r.PostForm)
		if err := ctl.Submit(r.Context()); err == nil {
			log.Printf("✅ Library %s updated successfully", id)
		}
		if pc.nav.Redirect(w, r) {
			return
		}
		// Keep what the user typed; only the owner list is fetched again.
		_ = loadOwners(r, ctl)
	} else {
		// The record and the owner list resolve independently.
		var g errgroup.Group
		g.Go(func() error { return ctl.Hydrate(r.Context()) })
		g.Go(func() error { return loadOwners(r, ctl) })
		_ = g.Wait()
	}

	h.render(w, r, pc, models.PageData{
		Title:       pc.dict.T("libraryDetailsTitle"),
		CurrentPage: "library_form",
		Form:        formData(ctl, pageLibrary(id), "update"),
	})
}

// DeleteLibraryHandler - delete confirmation (GET) and deletion (POST)
func (h *Handler) DeleteLibraryHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	id := mux.Vars(r)["id"]
	ctl := form.NewEdit(librarySchema(), libraryResource, id, pc.caller, pc.scope)

	if r.Method == http.MethodPost {
		confirmed := r.PostFormValue("confirm") == "yes"
		err := ctl.Delete(r.Context(), confirmed)
		switch {
		case err == nil:
			log.Printf("✅ Library %s deleted successfully", id)
		case errors.Is(err, form.ErrNotConfirmed):
			pc.nav.Navigate(pageLibrary(id))
		}
		if !pc.nav.Redirect(w, r) {
			http.Redirect(w, r, pageLibrary(id), http.StatusSeeOther)
		}
		return
	}

	// The confirmation names the library; failing to fetch it still lets
	// the user confirm.
	_ = ctl.Hydrate(r.Context())

	h.render(w, r, pc, models.PageData{
		Title:       pc.dict.T("delete"),
		CurrentPage: "library_delete",
		Library:     &models.LibraryRef{ID: id, Name: ctl.Value(domain.FieldName)},
	})
}

func formData(ctl *form.Controller, action, submit string) *models.FormData {
	return &models.FormData{
		Action: action,
		Mode:   ctl.Mode().String(),
		ID:     ctl.ID(),
		Submit: submit,
		Fields: ctl.Fields(),
		Hidden: ctl.Hidden(),
	}
}
