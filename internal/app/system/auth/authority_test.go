package auth_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/domain/models"
)

func TestAttemptLogin_AllowList(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantRole string
		wantErr  error
		want     auth.State
	}{
		{"admin", "admin", "admin123", models.RoleAdmin, nil, auth.StateLoggedInAdmin},
		{"user", "user", "user123", models.RoleUser, nil, auth.StateLoggedInUser},
		{"wrong password", "admin", "user123", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"swapped pair", "user", "admin123", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"unknown user", "guest", "guest", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"case sensitive username", "Admin", "admin123", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"case sensitive password", "user", "USER123", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"no trimming", " admin", "admin123", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
		{"empty", "", "", "", auth.ErrInvalidCredentials, auth.StateLoggedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := auth.NewAuthority(auth.DefaultCredentials(), nil)

			role, err := a.AttemptLogin(tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if role != tt.wantRole {
				t.Errorf("role: got %q, want %q", role, tt.wantRole)
			}
			if got := a.Session().State(); got != tt.want {
				t.Errorf("state: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttemptLogin_FailureLeavesSessionUnchanged(t *testing.T) {
	sess := &auth.Session{}
	a := auth.NewAuthority(auth.DefaultCredentials(), sess)

	if _, err := a.AttemptLogin("admin", "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if *sess != (auth.Session{}) {
		t.Errorf("session changed after failed login: %+v", *sess)
	}
}

func TestAttemptLogin_WhileSignedIn(t *testing.T) {
	sess := &auth.Session{}
	a := auth.NewAuthority(auth.DefaultCredentials(), sess)

	if _, err := a.AttemptLogin("user", "user123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	before := *sess

	// No escalation path without logging out first.
	if _, err := a.AttemptLogin("admin", "admin123"); !errors.Is(err, auth.ErrAlreadySignedIn) {
		t.Fatalf("expected ErrAlreadySignedIn, got %v", err)
	}
	if *sess != before {
		t.Errorf("session changed: got %+v, want %+v", *sess, before)
	}
}

func TestLogout_ResetsRole(t *testing.T) {
	sess := &auth.Session{}
	a := auth.NewAuthority(auth.DefaultCredentials(), sess)

	if _, err := a.AttemptLogin("admin", "admin123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !sess.IsAdmin || sess.Username != "admin" {
		t.Fatalf("expected admin session, got %+v", *sess)
	}

	a.Logout()
	if sess.LoggedIn || sess.IsAdmin || sess.Username != "" {
		t.Errorf("expected logged-out session, got %+v", *sess)
	}

	// Logout is unconditional.
	a.Logout()
	if a.Session().State() != auth.StateLoggedOut {
		t.Error("second logout changed state")
	}

	// Re-login with the other role works after logout.
	role, err := a.AttemptLogin("user", "user123")
	if err != nil || role != models.RoleUser {
		t.Fatalf("re-login: role=%q err=%v", role, err)
	}
	if sess.IsAdmin {
		t.Error("admin flag survived logout")
	}
}

func TestSession_Role(t *testing.T) {
	tests := []struct {
		sess auth.Session
		want string
	}{
		{auth.Session{}, ""},
		{auth.Session{IsAdmin: true}, ""},
		{auth.Session{LoggedIn: true}, models.RoleUser},
		{auth.Session{LoggedIn: true, IsAdmin: true}, models.RoleAdmin},
	}
	for _, tt := range tests {
		if got := tt.sess.Role(); got != tt.want {
			t.Errorf("%+v.Role() = %q, want %q", tt.sess, got, tt.want)
		}
	}
}

func TestNewAuthority_CustomCredentials(t *testing.T) {
	a := auth.NewAuthority([]auth.Credential{{Username: "librarian", Password: "pw", Role: models.RoleAdmin}}, nil)

	if _, err := a.AttemptLogin("admin", "admin123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("default credentials should not apply: %v", err)
	}
	role, err := a.AttemptLogin("librarian", "pw")
	if err != nil || role != models.RoleAdmin {
		t.Fatalf("custom login: role=%q err=%v", role, err)
	}
}
