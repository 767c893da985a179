package api

import (
	"errors"
	"net/http"

	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/auth"
	"github.com/example/ec-admin-console/internal/validate"
	"github.com/example/ec-admin-console/internal/view"
)

const (
	genericMessage   = "Something went wrong. Please try again."
	exhaustedMessage = "Max retries reached for fetch request"
	expiredMessage   = "Your session has expired. Please log in again."
)

// userMessage is the text shown to the admin for err
func userMessage(err error) string {
	var vErr *validate.Error
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, auth.ErrPasswordMismatch), errors.Is(err, auth.ErrPasswordTooShort):
		return err.Error()
	case errors.Is(err, apiclient.ErrRetriesExhausted):
		return exhaustedMessage
	}
	return genericMessage
}

// httpStatus is the status a page re-rendered because of err is sent with
func httpStatus(err error) int {
	var vErr *validate.Error
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.Is(err, apiclient.ErrRetriesExhausted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// evictOn401 sends the admin back to login when err is an authorization
// failure. It reports whether it did; the caller must stop then.
func (h *Handlers) evictOn401(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	h.logger.InfoContext(r.Context(), "api rejected credential, evicting", "actor", actor(r.Context()), "path", r.URL.Path)
	h.sessions.Evict(w, r, &view.Flash{Kind: view.FlashError, Message: expiredMessage})
	return true
}

// logFailure logs err when it is not something the admin caused
func (h *Handlers) logFailure(r *http.Request, op string, err error) {
	var vErr *validate.Error
	var apiErr *apiclient.APIError
	if errors.As(err, &vErr) || (errors.As(err, &apiErr) && apiErr.Status < 500) {
		h.logger.DebugContext(r.Context(), op+" rejected", "error", err)
		return
	}
	h.logger.ErrorContext(r.Context(), op+" failed", "error", err)
}
