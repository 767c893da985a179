package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/ec-admin-console/internal/api/middleware"
)

// RouterConfig holds the pieces the console router is assembled from
type RouterConfig struct {
	Handlers *Handlers
	Sessions *middleware.Sessions
	Logger   *slog.Logger

	// Now is the clock used for the credential expiry check; nil means
	// time.Now.
	Now func() time.Time

	// CSRF wraps the routes once request bodies are capped; nil leaves them
	// unprotected.
	CSRF func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()

	// Public
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(StaticHandler()).Methods(http.MethodGet)
	r.HandleFunc("/login", h.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	// Console pages require a credential
	console := r.NewRoute().Subrouter()
	console.Use(cfg.Sessions.Guard(cfg.Now))

	console.HandleFunc("/", h.Overview).Methods(http.MethodGet)

	console.HandleFunc("/products", h.Products).Methods(http.MethodGet)
	console.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	console.HandleFunc("/products/new", h.NewProduct).Methods(http.MethodGet)
	console.HandleFunc("/products/{id}/edit", h.EditProduct).Methods(http.MethodGet)
	console.HandleFunc("/products/{id}/delete", h.ConfirmDeleteProduct).Methods(http.MethodGet)
	console.HandleFunc("/products/{id}/delete", h.DeleteProduct).Methods(http.MethodPost)
	console.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPost)

	console.HandleFunc("/orders", h.Orders).Methods(http.MethodGet)
	console.HandleFunc("/orders/{id}", h.OrderDetail).Methods(http.MethodGet)
	console.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods(http.MethodPost)

	console.HandleFunc("/settings", h.Settings).Methods(http.MethodGet)
	console.HandleFunc("/settings/password", h.ChangePassword).Methods(http.MethodPost)
	console.HandleFunc("/settings/email", h.ChangeEmail).Methods(http.MethodPost)
	console.HandleFunc("/settings/account", h.UpdateAccount).Methods(http.MethodPost)

	console.HandleFunc("/messages", h.Messages).Methods(http.MethodGet)
	console.HandleFunc("/messages/{id}/toggle", h.ToggleMessageRead).Methods(http.MethodPost)
	console.HandleFunc("/messages/{id}/delete", h.ConfirmDeleteMessage).Methods(http.MethodGet)
	console.HandleFunc("/messages/{id}/delete", h.DeleteMessage).Methods(http.MethodPost)
	console.HandleFunc("/messages/{id}/reply", h.ReplyForm).Methods(http.MethodGet)
	console.HandleFunc("/messages/{id}/reply", h.Reply).Methods(http.MethodPost)

	var routes http.Handler = r
	if cfg.CSRF != nil {
		routes = cfg.CSRF(routes)
	}
	// the body cap runs before anything parses a form, the CSRF check included
	routes = middleware.LimitBody(maxFormBytes, formMemory, logger)(routes)
	return middleware.Logging(logger)(middleware.SecurityHeaders(routes))
}
