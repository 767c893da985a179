package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/ec-admin-console/internal/api/middleware"
	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/auth"
	"github.com/example/ec-admin-console/internal/inflight"
	"github.com/example/ec-admin-console/internal/projection"
	"github.com/example/ec-admin-console/internal/view"
)

// Deps are the collaborators shared by every page controller
type Deps struct {
	Client    *apiclient.Client
	Sessions  *middleware.Sessions
	Templates *TemplateCache
	Audit     audit.Publisher
	Projector *projection.Projector
	Logger    *slog.Logger

	// UploadMaxWidth downscales wider product images; 0 disables
	UploadMaxWidth uint
}

// Handlers implements the console's page controllers
type Handlers struct {
	client         *apiclient.Client
	sessions       *middleware.Sessions
	templates      *TemplateCache
	guard          *inflight.Guard
	audit          audit.Publisher
	projector      *projection.Projector
	logger         *slog.Logger
	uploadMaxWidth uint
}

func NewHandlers(d Deps) *Handlers {
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Projector == nil {
		d.Projector = projection.NewProjector(nil)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handlers{
		client:         d.Client,
		sessions:       d.Sessions,
		templates:      d.Templates,
		guard:          inflight.NewGuard(),
		audit:          d.Audit,
		projector:      d.Projector,
		logger:         d.Logger.With("component", "console"),
		uploadMaxWidth: d.UploadMaxWidth,
	}
}

// actor identifies the admin in logs and audit events without exposing the
// credential.
func actor(ctx context.Context) string {
	return auth.Fingerprint(auth.CredentialFromContext(ctx))
}

// mutate runs one admin mutation through the in-flight guard, so a double
// submit of the same action, target and values reaches the API once. A
// submission with different values always gets its own call.
func (h *Handlers) mutate(ctx context.Context, action, target string, payload []string, fn func(ctx context.Context) error) error {
	key := inflight.Key(actor(ctx), action, target, payload...)
	shared, err := h.guard.Do(ctx, key, fn)
	if shared {
		h.logger.DebugContext(ctx, "duplicate submission collapsed", "action", action, "target", target)
	}
	return err
}

// record publishes an audit event for an accepted mutation. Failures are
// logged; the admin's action already happened.
func (h *Handlers) record(ctx context.Context, eventType, target string, attrs map[string]string) {
	e := audit.NewEvent(eventType, actor(ctx), target, attrs)
	if err := h.audit.Publish(ctx, e); err != nil {
		h.logger.WarnContext(ctx, "publish audit event", "type", eventType, "target", target, "error", err)
	}
}

func (h *Handlers) flash(w http.ResponseWriter, r *http.Request, kind view.FlashKind, msg string) {
	h.sessions.AddFlash(w, r, view.Flash{Kind: kind, Message: msg})
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
