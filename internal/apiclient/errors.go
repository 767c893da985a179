package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for any 401 response. Callers must drop the
	// credential and send the admin back to the login view.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRetriesExhausted is returned when every attempt failed with a
	// transport error or 429. It is never returned for other HTTP statuses.
	ErrRetriesExhausted = errors.New("max retries reached for fetch request")

	// ErrDecode wraps JSON decoding failures of an otherwise successful call.
	ErrDecode = errors.New("malformed response")

	errRateLimited = errors.New("rate limited (429)")
)

// APIError is a non-2xx response other than 401 and 429. Message is the
// server's "error" field or the operation's fallback text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	if errors.Is(err, ErrUnauthorized) {
		return 401
	}
	return 0
}

func exhausted(attempts uint64, cause error) error {
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, cause)
}
