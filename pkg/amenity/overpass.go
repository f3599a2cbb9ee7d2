package amenity

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/fetcher"
	"github.com/sells-group/locality-cli/internal/ratelimit"
	"github.com/sells-group/locality-cli/internal/resilience"
)

const overpassInterpreterURL = "https://overpass-api.de/api/interpreter"

// addressTagOrder is the join order for formatted addresses.
var addressTagOrder = []string{"addr:housenumber", "addr:street", "addr:city", "addr:state", "addr:postcode"}

// OverpassProvider queries an Overpass API interpreter.
type OverpassProvider struct {
	baseURL string
	fetcher *fetcher.HTTPFetcher
}

type overpassResponse struct {
	Elements []json.RawMessage `json:"elements"`
}

type overpassElement struct {
	Type   string  `json:"type"`
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

// NewOverpassProvider creates an OverpassProvider. The public instance asks
// for no more than about one request per second, which is the default rate.
func NewOverpassProvider(cfg Config) *OverpassProvider {
	if cfg.RequestsPerSecond <= 0 && cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerSecond = 1
	}
	base := cfg.BaseURL
	if base == "" {
		base = overpassInterpreterURL
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.FromRates(cfg.RequestsPerSecond, cfg.RequestsPerMinute)
	}
	retry := resilience.FromProviderSettings(cfg.MaxRetries, cfg.BackoffFactor, cfg.InitialBackoff)
	retry.OnRetry = resilience.RetryLogger(string(ProviderOverpass), "search")

	return &OverpassProvider{
		baseURL: base,
		fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Name:      string(ProviderOverpass),
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Retry:     retry,
			Limiter:   limiter,
			Client:    cfg.HTTPClient,
		}),
	}
}

// Name returns the provider identifier stored on every Amenity.
func (p *OverpassProvider) Name() string { return string(ProviderOverpass) }

// Search implements Provider.
func (p *OverpassProvider) Search(ctx context.Context, amenityType string, lat, lon, radiusKM float64) ([]Amenity, error) {
	tags, ok := Tags(amenityType)
	if !ok {
		zap.L().Warn("overpass: unmapped amenity type", zap.String("type", amenityType))
		return nil, nil
	}

	query := BuildQuery(lat, lon, radiusKM, tags)
	body, err := p.fetcher.PostForm(ctx, p.baseURL, url.Values{"data": {query}})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.L().Warn("overpass: search failed",
			zap.String("type", amenityType),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return nil, nil
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Warn("overpass: malformed response", zap.String("type", amenityType), zap.Error(err))
		return nil, nil
	}
	return p.parseElements(amenityType, resp.Elements), nil
}

func (p *OverpassProvider) parseElements(amenityType string, elements []json.RawMessage) []Amenity {
	seen := make(map[string]struct{}, len(elements))
	out := make([]Amenity, 0, len(elements))
	for _, raw := range elements {
		var el overpassElement
		if err := json.Unmarshal(raw, &el); err != nil {
			continue
		}

		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}

		placeID := fmt.Sprintf("%s/%d", el.Type, el.ID)
		if _, dup := seen[placeID]; dup {
			continue
		}
		seen[placeID] = struct{}{}

		out = append(out, Amenity{
			Type:             amenityType,
			Name:             el.Tags["name"],
			Latitude:         lat,
			Longitude:        lon,
			FormattedAddress: formatAddress(el.Tags),
			Provider:         p.Name(),
			ProviderPlaceID:  placeID,
			Raw:              raw,
		})
	}
	return out
}

// BuildQuery renders one combined Overpass QL union over every tag filter
// for nodes, ways and relations within the radius.
func BuildQuery(lat, lon, radiusKM float64, tags []Tag) string {
	meters := int(math.Round(radiusKM * 1000))
	if meters < 1 {
		meters = 1
	}
	around := fmt.Sprintf("(around:%d,%.6f,%.6f)", meters, lat, lon)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, t := range tags {
		for _, elem := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, `%s["%s"="%s"]%s;`, elem, t.Key, t.Value, around)
		}
	}
	b.WriteString(");out center tags;")
	return b.String()
}

func formatAddress(tags map[string]string) string {
	parts := make([]string, 0, len(addressTagOrder))
	for _, k := range addressTagOrder {
		if v := strings.TrimSpace(tags[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
