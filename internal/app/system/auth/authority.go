// internal/app/system/auth/authority.go
package auth

import (
	"errors"

	"github.com/dalemusser/edulibrary/internal/domain/models"
)

var (
	// ErrInvalidCredentials is returned when a login attempt matches no
	// entry in the credential table.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAlreadySignedIn is returned when a login is attempted on a session
	// that is already logged in. Logout first.
	ErrAlreadySignedIn = errors.New("already signed in")
)

// State is one of the three authentication states a session can be in.
type State int

const (
	StateLoggedOut State = iota
	StateLoggedInUser
	StateLoggedInAdmin
)

func (s State) String() string {
	switch s {
	case StateLoggedInUser:
		return "logged_in_user"
	case StateLoggedInAdmin:
		return "logged_in_admin"
	default:
		return "logged_out"
	}
}

// Session is the authentication state of one browser session.
// IsAdmin is only meaningful while LoggedIn is true.
type Session struct {
	LoggedIn bool
	IsAdmin  bool
	Username string
}

// State reports which state-machine state the session is in.
func (s Session) State() State {
	switch {
	case !s.LoggedIn:
		return StateLoggedOut
	case s.IsAdmin:
		return StateLoggedInAdmin
	default:
		return StateLoggedInUser
	}
}

// Role returns the session's role, or "" when logged out.
func (s Session) Role() string {
	switch s.State() {
	case StateLoggedInAdmin:
		return models.RoleAdmin
	case StateLoggedInUser:
		return models.RoleUser
	default:
		return ""
	}
}

// Credential is one entry of the login allow-list.
type Credential struct {
	Username string
	Password string
	Role     string
}

// DefaultCredentials returns the fixed two-entry allow-list.
func DefaultCredentials() []Credential {
	return []Credential{
		{Username: "admin", Password: "admin123", Role: models.RoleAdmin},
		{Username: "user", Password: "user123", Role: models.RoleUser},
	}
}

// Authority evaluates login attempts against a credential table and
// drives the Session it was given through its state machine.
//
// This is a policy gate. There is no lockout, rate limiting or hashing.
type Authority struct {
	creds []Credential
	sess  *Session
}

// NewAuthority returns an Authority over creds that mutates sess.
// A nil sess starts a fresh logged-out session.
func NewAuthority(creds []Credential, sess *Session) *Authority {
	if sess == nil {
		sess = &Session{}
	}
	return &Authority{creds: creds, sess: sess}
}

// Session returns a copy of the current session state.
func (a *Authority) Session() Session {
	return *a.sess
}

// AttemptLogin compares username and password against the credential
// table using case-sensitive exact match. On success the session moves to
// the matched role's logged-in state and the role is returned. On failure
// the session is left exactly as it was.
func (a *Authority) AttemptLogin(username, password string) (string, error) {
	if a.sess.LoggedIn {
		return "", ErrAlreadySignedIn
	}
	for _, c := range a.creds {
		if c.Username == username && c.Password == password {
			*a.sess = Session{
				LoggedIn: true,
				IsAdmin:  c.Role == models.RoleAdmin,
				Username: c.Username,
			}
			return c.Role, nil
		}
	}
	return "", ErrInvalidCredentials
}

// Logout resets the session to logged out, non-admin. It is safe to call
// on a session that is already logged out.
func (a *Authority) Logout() {
	*a.sess = Session{}
}
