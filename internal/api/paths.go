package api

import "net/url"

// Backend resource paths.
const (
	LibrariesPath = "/libraries"
	UsersPath     = "/auth/users"
	BackupPath    = "/backup"
	SignupPath    = "/signup"
	SignInPath    = "/auth/sign-in"
)

// LibraryPath returns the path of a single library record.
func LibraryPath(id string) string {
	return LibrariesPath + "/" + url.PathEscape(id)
}
