package handler

import (
	"log"
	"net/http"
	"strings"

	"libadmin/internal/locale"
)

// LanguageHandler - stores the language preference and reloads the page
//
// The dictionary is not swapped in place: the reload derives the language
// from the stored preference again.
func (h *Handler) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSpace(r.PostFormValue("lang"))
	if locale.ValidTag(lang) {
		locale.Persist(w, lang)
		log.Printf("✅ Language set: %s", lang)
	}
	http.Redirect(w, r, localPath(r.PostFormValue("return")), http.StatusSeeOther)
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return PageLibraries
	}
	return p
}
