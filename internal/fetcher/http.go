// Package fetcher performs the rate-limited, retried HTTP calls shared by the provider clients.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-cli/internal/ratelimit"
	"github.com/sells-group/locality-cli/internal/resilience"
)

// DefaultTimeout bounds a single outbound call.
const DefaultTimeout = 15 * time.Second

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	// Name labels log lines and error messages (e.g. "nominatim").
	Name      string
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
	// Limiter is shared by every request this fetcher makes. Nil disables limiting.
	Limiter *ratelimit.Limiter
	// Client overrides the default http.Client (tests use a rewriting transport).
	Client *http.Client
	// CheckBody inspects a 2xx body; a transient error it returns is retried
	// like a 5xx (for APIs that report quota errors inside a 200).
	CheckBody func(body []byte) error
}

// HTTPFetcher issues requests through the limiter and the retry policy.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *ratelimit.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "locality-cli/1.0"
	}
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger(opts.Name, "fetch")
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Every(0)
	}
	return &HTTPFetcher{client: client, opts: opts, limiter: limiter}
}

// Get fetches rawURL and returns the response body.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return f.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// PostForm posts form as application/x-www-form-urlencoded and returns the response body.
func (f *HTTPFetcher) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	return f.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// do runs one logical request: every attempt waits on the limiter first, so
// retries also respect the provider's rate.
func (f *HTTPFetcher) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	return resilience.DoVal(ctx, f.opts.Retry, func(ctx context.Context) ([]byte, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := build(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: build request", f.opts.Name)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrapf(err, "%s: request", f.opts.Name)
			}
			// Timeouts, resets and refused connections are all worth another try.
			return nil, resilience.NewTransientError(eris.Wrapf(err, "%s: request", f.opts.Name), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if err := resilience.CheckStatus(f.opts.Name, resp.StatusCode); err != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "%s: read body", f.opts.Name), resp.StatusCode)
		}
		if f.opts.CheckBody != nil {
			if err := f.opts.CheckBody(body); err != nil {
				return nil, err
			}
		}
		return body, nil
	})
}
