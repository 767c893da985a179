package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/ec-admin-console/internal/auth"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks to the remote e-commerce API. The bearer credential is taken
// from the request context (see auth.WithCredential).
type Client struct {
	baseURL *url.URL
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, fetcher *Fetcher, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: u,
		fetcher: fetcher,
		logger:  logger.With("component", "apiclient"),
	}, nil
}

// AssetURL resolves an image reference returned by the API. Absolute URLs are
// returned unchanged; relative paths are joined onto the API base URL.
func (c *Client) AssetURL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return c.baseURL.String() + "/" + strings.TrimLeft(ref, "/")
}

// request describes one API call
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	fallback    string
	anonymous   bool
}

func jsonRequest(method, path string, in any, fallback string) (request, error) {
	req := request{method: method, path: path, fallback: fallback}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return req, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends r and decodes a successful JSON body into out (if non-nil)
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if !r.anonymous {
		req.Header.Set("Authorization", "Bearer "+auth.CredentialFromContext(ctx))
	}

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", r.method, r.path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.InfoContext(ctx, "api rejected credential", "method", r.method, "path", r.path)
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, r.fallback)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.ErrorContext(ctx, "decode api response", "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, r.method, r.path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from body, falling back when the
// body is not JSON or the field is missing or empty.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}
