package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"libadmin/internal/api"
	"libadmin/internal/backup"
	"libadmin/internal/domain"
	"libadmin/internal/locale"
	"libadmin/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Languages offered by the header buttons.
var Languages = []string{"en", "ua"}

// Handler - dependencies shared by every page
type Handler struct {
	API             *api.Client
	Locales         *locale.Provider
	Backups         *backup.Store
	Tmpl            *template.Template
	DefaultLanguage string
}

// NewHandler parses the page templates and wires the page dependencies.
func NewHandler(client *api.Client, locales *locale.Provider, backups *backup.Store, defaultLanguage string) (*Handler, error) {
	funcMap := template.FuncMap{
		"rate": func(lang string, rate domain.Decimal, cur domain.Currency) string {
			return domain.FormatRate(locale.Tag(lang), rate, cur)
		},
		"libraryPath": func(id string) string {
			return pageLibrary(id)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	log.Printf("✅ Templates loaded: %d", len(tmpl.Templates()))

	if defaultLanguage == "" {
		defaultLanguage = locale.DefaultLanguage
	}
	if backups == nil {
		backups = backup.NewStore()
	}
	return &Handler{
		API:             client,
		Locales:         locales,
		Backups:         backups,
		Tmpl:            tmpl,
		DefaultLanguage: defaultLanguage,
	}, nil
}

// setEncoding sets the HTML content type
func (h *Handler) setEncoding(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// render follows a pending navigation, or renders the page inside base.html.
// Nothing is written once the browser has gone away.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, pc *pageContext, data models.PageData) {
	if pc.nav.Redirect(w, r) {
		return
	}
	if !pc.scope.Mounted() {
		log.Printf("⚠️ %s closed before render", r.URL.Path)
		return
	}
	data.Lang = pc.lang
	data.Dict = pc.dict
	data.Languages = Languages
	data.SignedInAs = pc.signedInAs
	if data.ReturnTo == "" {
		data.ReturnTo = r.URL.Path
	}

	h.setEncoding(w)
	if err := h.Tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("❌ Template error on %s: %v", data.CurrentPage, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
