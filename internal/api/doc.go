// Package api is the session-aware client for the library backend REST API.
//
// Pages never inspect status codes for authentication themselves: a Caller
// navigates to the login page on 401/403 before the error reaches the page.
package api
