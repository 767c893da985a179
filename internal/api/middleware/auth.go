package middleware

import (
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/example/ec-admin-console/internal/auth"
	"github.com/example/ec-admin-console/internal/view"
)

const (
	SessionName   = "admin-session"
	credentialKey = "adminToken"

	// LoginPath is where the guard sends requests without a usable credential
	LoginPath = "/login"
)

func init() {
	gob.Register(view.Flash{})
}

// Sessions keeps the admin's bearer credential and flash banners in a signed
// cookie session.
type Sessions struct {
	store  sessions.Store
	logger *slog.Logger
}

func NewSessions(store sessions.Store, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{store: store, logger: logger.With("component", "session")}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	// a tampered or stale cookie yields a fresh empty session
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		s.logger.DebugContext(r.Context(), "discarding unreadable session", "error", err)
	}
	return session
}

func (s *Sessions) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	if err := session.Save(r, w); err != nil {
		s.logger.ErrorContext(r.Context(), "save session", "error", err)
	}
}

// Credential returns the stored bearer credential, or "" when absent
func (s *Sessions) Credential(r *http.Request) string {
	token, _ := s.session(r).Values[credentialKey].(string)
	return token
}

// SetCredential stores token after a successful login
func (s *Sessions) SetCredential(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.session(r)
	session.Values[credentialKey] = token
	return session.Save(r, w)
}

// Evict drops the credential, optionally queues a flash for the login page
// and redirects there. Nothing else may be written to w afterwards.
func (s *Sessions) Evict(w http.ResponseWriter, r *http.Request, flash *view.Flash) {
	session := s.session(r)
	delete(session.Values, credentialKey)
	if flash != nil {
		session.AddFlash(*flash)
	}
	s.save(w, r, session)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// AddFlash queues a banner for the next rendered page
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, f view.Flash) {
	session := s.session(r)
	session.AddFlash(f)
	s.save(w, r, session)
}

// Flashes pops the queued banners. It writes the session cookie, so call it
// before the response body.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []view.Flash {
	session := s.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	s.save(w, r, session)

	out := make([]view.Flash, 0, len(raw))
	for _, f := range raw {
		if fm, ok := f.(view.Flash); ok {
			out = append(out, fm)
		}
	}
	return out
}

// Guard gates console pages on a stored credential. A JWT credential whose
// exp is already past is evicted without a round trip to the API; opaque
// credentials pass through. The credential is put on the request context
// for the API client.
func (s *Sessions) Guard(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := s.Credential(r)
			if token == "" {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if auth.Expired(token, now()) {
				s.logger.InfoContext(r.Context(), "credential expired, evicting", "actor", auth.Fingerprint(token))
				s.Evict(w, r, &view.Flash{Kind: view.FlashError, Message: "Your session has expired. Please log in again."})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithCredential(r.Context(), token)))
		})
	}
}
