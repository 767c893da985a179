package middleware

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// LimitBody caps request bodies at maxBytes and parses forms up front, with
// at most memory bytes of file parts held in memory. Later readers (the CSRF
// check, the handlers) see the already parsed form and cannot read past the
// cap. A body over the cap gets a 413.
func LimitBody(maxBytes, memory int64, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			err := r.ParseMultipartForm(memory)
			if err == nil || errors.Is(err, http.ErrNotMultipart) {
				next.ServeHTTP(w, r)
				return
			}

			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
				logger.WarnContext(r.Context(), "request body too large", "path", r.URL.Path, "limit", maxBytes)
				http.Error(w, "The submitted form is too large.", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Malformed form submission.", http.StatusBadRequest)
		})
	}
}
