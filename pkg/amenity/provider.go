package amenity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-cli/internal/ratelimit"
)

// Provider is a spatial POI source. Failures of any kind come back as an
// empty slice with a nil error; only a cancelled context produces an error.
type Provider interface {
	Search(ctx context.Context, amenityType string, lat, lon, radiusKM float64) ([]Amenity, error)
}

// ProviderKind selects a Provider implementation.
type ProviderKind string

// Supported providers.
const (
	ProviderOverpass ProviderKind = "overpass"
)

// Config configures a Provider built by NewProvider.
type Config struct {
	Provider          ProviderKind
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	RequestsPerMinute float64
	Timeout           time.Duration
	MaxRetries        int
	BackoffFactor     float64
	InitialBackoff    time.Duration
	HTTPClient        *http.Client
	Limiter           *ratelimit.Limiter
}

// NewProvider builds the Provider selected by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch ProviderKind(strings.ToLower(string(cfg.Provider))) {
	case ProviderOverpass, "":
		return NewOverpassProvider(cfg), nil
	default:
		return nil, eris.Errorf("amenity: unknown provider %q", cfg.Provider)
	}
}
