package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"libadmin/internal/backup"
	"libadmin/internal/models"
	"libadmin/internal/session"
)

// backupHolder returns the browser's holder id, issuing one when asked to.
func backupHolder(w http.ResponseWriter, r *http.Request, issue bool) (string, bool) {
	if cookie, err := r.Cookie(backup.HolderCookie); err == nil && backup.ValidHolder(cookie.Value) {
		return cookie.Value, true
	}
	if !issue {
		return "", false
	}
	holder := backup.NewHolder()
	http.SetCookie(w, &http.Cookie{
		Name:     backup.HolderCookie,
		Value:    holder,
		Path:     PageBackup,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return holder, true
}

// BackupHandler - shows the held backup (GET) or requests a new one (POST)
func (h *Handler) BackupHandler(w http.ResponseWriter, r *http.Request) {
	pc, unmount := h.mount(r)
	defer unmount()

	if r.Method == http.MethodPost {
		holder, _ := backupHolder(w, r, true)
		if text, err := h.Backups.Fetch(r.Context(), pc.caller, holder, pc.signedInAs); err == nil {
			log.Printf("✅ Backup fetched: %d bytes", len(text))
		}
		if !pc.nav.Redirect(w, r) {
			http.Redirect(w, r, PageBackup, http.StatusSeeOther)
		}
		return
	}

	data := models.PageData{
		Title:       pc.dict.T("backupTitle"),
		CurrentPage: "backup",
	}
	if holder, ok := backupHolder(w, r, false); ok {
		data.Backup, _ = h.Backups.Held(holder, pc.signedInAs)
		data.HasBackup = data.Backup != ""
	}
	h.render(w, r, pc, data)
}

// BackupDownloadHandler - serves the held backup as backup.sql, no backend call.
// Only the account that fetched the backup gets it back.
func (h *Handler) BackupDownloadHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := session.FromRequest(r).Subject(time.Now())
	if !ok {
		http.Redirect(w, r, PageLogin, http.StatusSeeOther)
		return
	}
	holder, ok := backupHolder(w, r, false)
	if !ok {
		http.Redirect(w, r, PageBackup, http.StatusSeeOther)
		return
	}
	file, ok := h.Backups.Download(holder, subject)
	if !ok {
		http.Redirect(w, r, PageBackup, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	_, _ = w.Write(file.Body)
}
