package models

import (
	"libadmin/internal/domain"
	"libadmin/internal/form"
	"libadmin/internal/locale"
)

// PageData - data passed to the HTML templates
type PageData struct {
	Title       string
	CurrentPage string
	Lang        string
	Languages   []string
	Dict        locale.Dictionary
	// ReturnTo is the page the language buttons reload.
	ReturnTo   string
	SignedInAs string

	Libraries []domain.Library
	Form      *FormData
	Library   *LibraryRef

	Backup    string
	HasBackup bool

	Email string
}

// FormData - a rendered record form
type FormData struct {
	Action string
	Mode   string
	ID     string
	Submit string // dictionary key of the submit button
	Fields []form.FieldView
	Hidden []form.HiddenField
}

// LibraryRef - library shown on the delete confirmation page
type LibraryRef struct {
	ID   string
	Name string
}

// T resolves a dictionary key for the page.
func (p PageData) T(key string) string {
	return p.Dict.T(key)
}
