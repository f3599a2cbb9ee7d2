// Package geocode resolves structured Indian property addresses to coordinates
// through Nominatim or Google, with a persistent cache and candidate fallback.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-cli/internal/fetcher"
	"github.com/sells-group/locality-cli/internal/ratelimit"
	"github.com/sells-group/locality-cli/internal/resilience"
)

// Precision labels how specific a geocode result is.
type Precision string

// Precision labels, most to least specific.
const (
	PrecisionExact    Precision = "exact"
	PrecisionLocality Precision = "locality"
	PrecisionTown     Precision = "town"
	PrecisionCity     Precision = "city"
	PrecisionDistrict Precision = "district"
	PrecisionState    Precision = "state"
	PrecisionUnknown  Precision = "unknown"
)

// Result holds one geocoding outcome. Matched=false means the provider found nothing.
type Result struct {
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	FormattedAddress string          `json:"formatted_address,omitempty"`
	Precision        Precision       `json:"precision,omitempty"`
	Source           string          `json:"source"`
	Raw              json.RawMessage `json:"raw,omitempty"`
	Matched          bool            `json:"matched"`
}

// Provider is a single geocoding backend. Lookup failures of any kind come
// back as Result{Matched: false} with a nil error; only a cancelled context
// produces an error.
type Provider interface {
	Geocode(ctx context.Context, text string) (*Result, error)
}

// ProviderKind selects a Provider implementation.
type ProviderKind string

// Supported providers.
const (
	ProviderNominatim ProviderKind = "nominatim"
	ProviderGoogle    ProviderKind = "google"
)

// Config configures a Provider built by NewProvider.
type Config struct {
	Provider ProviderKind
	APIKey   string
	// BaseURL overrides the provider's public endpoint.
	BaseURL   string
	UserAgent string
	// CountryCodes restricts Nominatim searches (e.g. "in").
	CountryCodes      string
	RequestsPerSecond float64
	RequestsPerMinute float64
	Timeout           time.Duration
	MaxRetries        int
	BackoffFactor     float64
	// InitialBackoff defaults to one second.
	InitialBackoff time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
	// Limiter overrides the limiter derived from the configured rates, letting
	// several providers share one.
	Limiter *ratelimit.Limiter
}

// NewProvider builds the Provider selected by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch ProviderKind(strings.ToLower(string(cfg.Provider))) {
	case ProviderNominatim, "":
		return NewNominatimProvider(cfg), nil
	case ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, eris.New("geocode: google provider requires an api key")
		}
		return NewGoogleProvider(cfg), nil
	default:
		return nil, eris.Errorf("geocode: unknown provider %q", cfg.Provider)
	}
}

func newFetcher(name string, cfg Config, checkBody func([]byte) error) *fetcher.HTTPFetcher {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.FromRates(cfg.RequestsPerSecond, cfg.RequestsPerMinute)
	}
	retry := resilience.FromProviderSettings(cfg.MaxRetries, cfg.BackoffFactor, cfg.InitialBackoff)
	retry.OnRetry = resilience.RetryLogger(name, "geocode")
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Name:      name,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Retry:     retry,
		Limiter:   limiter,
		Client:    cfg.HTTPClient,
		CheckBody: checkBody,
	})
}
