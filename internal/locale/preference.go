package locale

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// DefaultLanguage is used when no preference is stored.
	DefaultLanguage = "en"
	// CookieName stores the selected language.
	CookieName = "language"
)

// preferenceMaxAge keeps the language choice across browser restarts.
const preferenceMaxAge = 365 * 24 * time.Hour

// FromRequest reads the stored language, falling back to fallback (or
// DefaultLanguage when fallback is empty).
func FromRequest(r *http.Request, fallback string) string {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fallback
	}
	lang := strings.TrimSpace(cookie.Value)
	if !ValidTag(lang) {
		return fallback
	}
	return lang
}

// Persist stores lang as the durable language preference.
func Persist(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Tag maps a dictionary tag to a language tag for number formatting.
// "ua" is the country code the dictionaries use for Ukrainian.
func Tag(lang string) language.Tag {
	if strings.EqualFold(lang, "ua") {
		return language.Ukrainian
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}
