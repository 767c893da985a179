package apiclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultRetryBudget = 3
	DefaultBaseBackoff = time.Second

	requestIDHeader = "X-Request-ID"
)

// Doer is the transport the fetcher wraps. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Fetcher performs HTTP requests with bounded retry. Transport errors and 429
// responses are retried after base*2^attempt; every other response is handed
// back to the caller untouched.
type Fetcher struct {
	doer   Doer
	budget uint64
	base   time.Duration
	sleep  SleepFunc
	logger *slog.Logger
}

type FetcherOption func(*Fetcher)

// WithRetryBudget sets the number of attempts (and so the number of delays).
// Values below 1 are ignored.
func WithRetryBudget(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.budget = uint64(n)
		}
	}
}

func WithBaseBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.base = d
		}
	}
}

func WithSleep(fn SleepFunc) FetcherOption {
	return func(f *Fetcher) {
		if fn != nil {
			f.sleep = fn
		}
	}
}

func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher wraps doer with the default budget of 3 attempts and 1s base.
func NewFetcher(doer Doer, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		doer:   doer,
		budget: DefaultRetryBudget,
		base:   DefaultBaseBackoff,
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "fetch")
	return f
}

// Do sends req, retrying transient failures. The request body must be
// replayable (GetBody set), which http.NewRequest does for in-memory readers.
//
// After budget transient failures, and so budget delays, Do returns an error
// wrapping ErrRetriesExhausted and the last cause.
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	reqID := req.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	// base, 2*base, 4*base, ... with no jitter; the loop bounds the count
	backoff := retry.NewExponential(f.base)

	var lastErr error
	for attempt := uint64(0); attempt < f.budget; attempt++ {
		attemptReq, err := f.prepare(ctx, req, reqID)
		if err != nil {
			return nil, err
		}

		resp, err := f.doer.Do(attemptReq)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = errRateLimited
		default:
			return resp, nil
		}

		wait, _ := backoff.Next()
		f.logger.WarnContext(ctx, "request failed, retrying",
			"request_id", reqID,
			"method", req.Method,
			"url", req.URL.Redacted(),
			"attempt", attempt+1,
			"budget", f.budget,
			"wait", wait,
			"error", lastErr,
		)
		if err := f.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	f.logger.ErrorContext(ctx, "request retries exhausted",
		"request_id", reqID,
		"method", req.Method,
		"url", req.URL.Redacted(),
		"error", lastErr,
	)
	return nil, exhausted(f.budget, lastErr)
}

func (f *Fetcher) prepare(ctx context.Context, req *http.Request, reqID string) (*http.Request, error) {
	r := req.Clone(ctx)
	r.Header.Set(requestIDHeader, reqID)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
