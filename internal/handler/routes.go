package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"libadmin/internal/locale"
)

// Routes - navigation shell: path to page table
//
// Unknown paths, and known paths hit with the wrong method, redirect to the
// library list instead of an error page.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc(PageLibraries, h.LibrariesHandler).Methods(http.MethodGet)
	r.HandleFunc(PageNewLibrary, h.NewLibraryHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(PageLibraries+"/{id}", h.EditLibraryHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(PageLibraries+"/{id}/delete", h.DeleteLibraryHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(PageBackup, h.BackupHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(PageBackup+"/download", h.BackupDownloadHandler).Methods(http.MethodGet)
	r.HandleFunc(PageLogin, h.LoginHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(PageSignup, h.SignupHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/language", h.LanguageHandler).Methods(http.MethodPost)
	r.PathPrefix("/locales/").Handler(http.FileServerFS(locale.Embedded)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(redirectToList)
	r.MethodNotAllowedHandler = http.HandlerFunc(redirectToList)
	return r
}

func redirectToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, PageLibraries, http.StatusFound)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
