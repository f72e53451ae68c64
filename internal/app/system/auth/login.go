// internal/app/system/auth/login.go
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// session loads the request's gorilla session. A cookie that fails to decode
// (bad signature, rotated key) is logged and replaced by a fresh session.
func (sm *SessionManager) session(r *http.Request) *sessions.Session {
	sess, err := sm.GetSession(r)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.log.Error("session store error, using fresh session", zap.Error(err))
		}
	}
	return sess
}

// Login runs one login attempt against the request's session. On success the
// new state (and a freshly minted library key) is saved to the cookie and
// returned. ErrInvalidCredentials and ErrAlreadySignedIn leave the cookie
// untouched; the returned Session is then the unchanged current state.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, creds []Credential, username, password string) (Session, error) {
	sess := sm.session(r)
	st := StateFrom(sess)

	a := NewAuthority(creds, &st)
	if _, err := a.AttemptLogin(username, password); err != nil {
		return st, err
	}

	ApplyState(sess, st)
	if err := sess.Save(r, w); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// Logout resets the session to logged out and expires the cookie. It returns
// the state and library key the session held before, so the caller can audit
// the logout and release the library.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) (prev Session, libraryKey string, err error) {
	sess := sm.session(r)
	prev = StateFrom(sess)
	libraryKey = LibraryKey(sess)

	st := prev
	NewAuthority(nil, &st).Logout()
	ApplyState(sess, st)

	// Ensure the deletion cookie matches the original store settings.
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		return prev, libraryKey, fmt.Errorf("save session: %w", err)
	}
	return prev, libraryKey, nil
}
