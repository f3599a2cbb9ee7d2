package geocode

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/locality-cli/internal/ratelimit"
)

// testConfig returns a provider config pointed at a test server with no rate
// limiting and millisecond backoff.
func testConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      "locality-test",
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		BackoffFactor:  2,
		InitialBackoff: time.Millisecond,
		Limiter:        ratelimit.Every(0),
	}
}

// newRewriteClient creates an HTTP client that rewrites requests to a test server URL.
// All requests matching the target prefix are redirected to the test server.
func newRewriteClient(testServerURL, targetPrefix string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:         http.DefaultTransport,
			testServer:   testServerURL,
			targetPrefix: targetPrefix,
		},
	}
}

type rewriteTransport struct {
	base         http.RoundTripper
	testServer   string
	targetPrefix string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	if strings.HasPrefix(origURL, t.targetPrefix) {
		suffix := origURL[len(t.targetPrefix):]
		newURL := t.testServer + suffix
		newReq := req.Clone(req.Context())
		parsed, err := req.URL.Parse(newURL)
		if err != nil {
			return nil, err
		}
		newReq.URL = parsed
		newReq.Host = parsed.Host
		return t.base.RoundTrip(newReq)
	}
	return t.base.RoundTrip(req)
}

// fakeProvider answers from a fixed table and records every lookup.
type fakeProvider struct {
	mu      sync.Mutex
	results map[string]*Result
	calls   []string
}

func newFakeProvider(results map[string]*Result) *fakeProvider {
	return &fakeProvider{results: results}
}

func (f *fakeProvider) Geocode(ctx context.Context, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if r, ok := f.results[text]; ok {
		return r, nil
	}
	return &Result{Matched: false, Source: "fake"}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// failingCache fails every read and write.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (*Result, bool, error) {
	return nil, false, errCacheDown
}

func (failingCache) Put(context.Context, string, *Result) error { return errCacheDown }
