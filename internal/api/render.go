package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/example/ec-admin-console/internal/format"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "layout.html"

// pages lists every template the console renders. Each is parsed together
// with the layout.
var pages = []string{
	"login.html",
	"overview.html",
	"products.html",
	"product_form.html",
	"product_delete.html",
	"orders.html",
	"order_detail.html",
	"settings.html",
	"messages.html",
	"message_delete.html",
	"message_reply.html",
}

// TemplateError names a template that could not be loaded at startup
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// TemplateCache holds the parsed page templates
type TemplateCache struct {
	cache map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"money": format.Money,
	"count": format.Count,
	"date":  format.Date,
	"statusClass": func(s readmodel.OrderStatus) string {
		switch s {
		case readmodel.OrderShipped:
			return "status-shipped"
		case readmodel.OrderCanceled:
			return "status-canceled"
		}
		return "status-pending"
	},
}

// NewTemplateCache parses every page once. A missing or broken template is
// reported as a *TemplateError so the console refuses to start.
func NewTemplateCache() (*TemplateCache, error) {
	return loadTemplates(templateFS, pages)
}

func loadTemplates(fsys fs.FS, names []string) (*TemplateCache, error) {
	tc := &TemplateCache{cache: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		tmpl, err := template.New(layoutFile).Funcs(templateFuncs).ParseFS(fsys,
			"templates/"+layoutFile,
			"templates/"+name,
		)
		if err != nil {
			return nil, &TemplateError{Name: name, Err: err}
		}
		tc.cache[name] = tmpl
	}
	return tc, nil
}

func (tc *TemplateCache) Get(name string) (*template.Template, bool) {
	tmpl, ok := tc.cache[name]
	return tmpl, ok
}

// StaticHandler serves the embedded stylesheet and script under /static/
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Page is the data every template renders. Data holds the page's own
// view-model.
type Page struct {
	Title     string
	Nav       string
	Greeting  string
	CSRFField template.HTML
	Flashes   []view.Flash
	Status    view.Status
	Data      any
}

// newPage starts a console page: it loads the admin identity for the
// greeting and pops pending flashes. It returns false when the API rejected
// the credential and the admin was sent to login.
func (h *Handlers) newPage(w http.ResponseWriter, r *http.Request, title, nav string) (*Page, bool) {
	email := ""
	profile, err := h.client.Profile(r.Context())
	switch {
	case err == nil:
		email = strings.TrimSpace(profile.Email)
	case h.evictOn401(w, r, err):
		return nil, false
	default:
		h.logger.DebugContext(r.Context(), "admin profile unavailable", "error", err)
	}

	return &Page{
		Title:     title,
		Nav:       nav,
		Greeting:  view.Greeting(email),
		CSRFField: csrf.TemplateField(r),
		Flashes:   h.sessions.Flashes(w, r),
	}, true
}

// render executes the named page into a buffer first so a template error
// never leaves a half written response.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, p *Page) {
	tmpl, ok := h.templates.Get(name)
	if !ok {
		h.logger.ErrorContext(r.Context(), "template not loaded", "template", name)
		http.Error(w, genericMessage, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutFile, p); err != nil {
		h.logger.ErrorContext(r.Context(), "render template", "template", name, "error", err)
		http.Error(w, genericMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
