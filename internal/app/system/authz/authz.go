// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/domain/models"
)

// UserCtx returns the user's role (lowercased), username and a found flag.
// If no user is present it returns "visitor", "", false.
func UserCtx(r *http.Request) (role string, name string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", false
	}
	return strings.ToLower(user.Role), user.Username, true
}

// IsAdmin reports whether the current request's user is an admin. Templates
// use it to decide whether to show edit and delete controls.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// LibraryKey returns the current user's library key, or "" when signed out.
func LibraryKey(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.LibraryKey
}
