package auth

import (
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "movietrack-session"

// rememberMaxAge is the cookie lifetime when "remember me" is ticked.
// Without it the cookie is session-scoped and dies with the browser.
const rememberMaxAge = 86400 * 30

// Flash is a one-shot notice rendered on the next page load.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Sessions resolves requests to the signed-in user and back. It wraps a
// cookie store keyed from the configured session secret.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secret string, secureCookies bool) *Sessions {
	// Derive two 32-byte keys from the secret: one for signing (HMAC),
	// one for content encryption (AES)
	authKey := sha256.Sum256([]byte(secret + "auth"))
	encKey := sha256.Sum256([]byte(secret + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // session-scoped unless SignIn extends it
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// SignIn establishes an authenticated session for userID.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID int, remember bool) {
	session, _ := s.store.Get(r, sessionName)
	session.Values["userID"] = userID
	if remember {
		session.Options.MaxAge = rememberMaxAge
	} else {
		session.Options.MaxAge = 0
	}
	session.Save(r, w)
}

// SignOut invalidates the session. Calling it on an anonymous request is a
// no-op.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "userID")
	session.Options.MaxAge = -1
	session.Save(r, w)
}

// CurrentUserID returns the signed-in user's id, or 0 for an anonymous,
// invalid or expired session.
func (s *Sessions) CurrentUserID(r *http.Request) int {
	session, _ := s.store.Get(r, sessionName)
	if id, ok := session.Values["userID"].(int); ok {
		return id
	}
	return 0
}

// AddFlash queues a notice for the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(Flash{Category: category, Message: message})
	session.Save(r, w)
}

// Flashes drains and returns the queued notices.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := s.store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save(r, w)

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > 20 {
		return errors.New("password must be at most 20 characters")
	}
	return nil
}
