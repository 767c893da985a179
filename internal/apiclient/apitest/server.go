// Package apitest provides a programmable fake of the remote e-commerce API
// for tests. It records every call so tests can assert on the exact sequence
// of requests a controller made.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call records one request received by the fake
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Response is a canned reply. A nil Body writes no body.
type Response struct {
	Status int
	Body   any
}

// Server is a fake API backed by httptest.Server
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	calls  []Call
	routes map[string][]http.HandlerFunc
}

// NewServer starts a fake API that is closed when the test ends. Unrouted
// requests get a 404 with a JSON error body.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string][]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func routeKey(method, path string) string {
	return method + " " + path
}

// Handle replies to every method+path request with status and a JSON body
func (s *Server) Handle(method, path string, status int, body any) {
	s.HandleFunc(method, path, JSON(status, body))
}

// HandleSequence replies with responses in order; the last one repeats
func (s *Server) HandleSequence(method, path string, responses ...Response) {
	handlers := make([]http.HandlerFunc, 0, len(responses))
	for _, r := range responses {
		handlers = append(handlers, JSON(r.Status, r.Body))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey(method, path)] = handlers
}

// HandleFunc installs a custom handler for method+path
func (s *Server) HandleFunc(method, path string, fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey(method, path)] = []http.HandlerFunc{fn}
}

// Calls returns a copy of all recorded calls
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls for method+path
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps routes
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	key := routeKey(r.Method, r.URL.Path)
	handlers := s.routes[key]
	var h http.HandlerFunc
	if len(handlers) > 0 {
		h = handlers[0]
		if len(handlers) > 1 {
			s.routes[key] = handlers[1:]
		}
	}
	s.mu.Unlock()

	if h == nil {
		JSON(http.StatusNotFound, map[string]string{"error": "not found"})(w, r)
		return
	}
	h(w, r)
}

// JSON returns a handler writing status and body encoded as JSON
func JSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if body == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Error is the API's error body shape
func Error(msg string) map[string]string {
	return map[string]string{"error": msg}
}
