package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/example/ec-admin-console/internal/auth"
	"github.com/example/ec-admin-console/internal/validate"
	"github.com/example/ec-admin-console/internal/view"
)

type loginData struct {
	Email string
}

// LoginForm renders the login page. An admin who still holds a credential is
// sent to the overview.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Credential(r) != "" {
		h.redirect(w, r, "/")
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", nil)
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, email string, err error) {
	p := &Page{
		Title:     "Admin Login",
		CSRFField: csrf.TemplateField(r),
		Flashes:   h.sessions.Flashes(w, r),
		Data:      loginData{Email: email},
	}
	if err != nil {
		p.Status = view.Failed(userMessage(err))
	}
	h.render(w, r, status, "login.html", p)
}

// Login exchanges the submitted credentials for a bearer token and keeps it
// in the session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if err := validate.Login(email, password); err != nil {
		h.renderLogin(w, r, httpStatus(err), email, err)
		return
	}

	token, err := h.client.Login(r.Context(), email, password)
	if err != nil {
		h.logFailure(r, "login", err)
		h.renderLogin(w, r, httpStatus(err), email, err)
		return
	}

	if err := h.sessions.SetCredential(w, r, token); err != nil {
		h.logger.ErrorContext(r.Context(), "store credential", "error", err)
		h.renderLogin(w, r, http.StatusInternalServerError, email, err)
		return
	}
	h.logger.InfoContext(r.Context(), "admin logged in", "actor", auth.Fingerprint(token))
	h.redirect(w, r, "/")
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Evict(w, r, &view.Flash{Kind: view.FlashSuccess, Message: "Logged out successfully!"})
}
