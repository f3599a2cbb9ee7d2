package geocode

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/fetcher"
	"github.com/sells-group/locality-cli/internal/resilience"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleProvider geocodes using the Google Geocoding API.
type GoogleProvider struct {
	baseURL string
	apiKey  string
	fetcher *fetcher.HTTPFetcher
}

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results []json.RawMessage `json:"results"`
	Status  string            `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
}

// NewGoogleProvider creates a GoogleProvider.
func NewGoogleProvider(cfg Config) *GoogleProvider {
	base := cfg.BaseURL
	if base == "" {
		base = googleGeocodeURL
	}
	return &GoogleProvider{
		baseURL: base,
		apiKey:  cfg.APIKey,
		fetcher: newFetcher(string(ProviderGoogle), cfg, checkGoogleStatus),
	}
}

// Name returns the provider identifier stored as the result source.
func (p *GoogleProvider) Name() string { return string(ProviderGoogle) }

// checkGoogleStatus turns quota and server-side statuses reported inside a
// 200 response into transient errors.
func checkGoogleStatus(body []byte) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	switch resp.Status {
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return resilience.NewTransientError(eris.Errorf("google: status %s", resp.Status), 0)
	}
	return nil
}

// Geocode implements Provider.
func (p *GoogleProvider) Geocode(ctx context.Context, text string) (*Result, error) {
	noMatch := &Result{Matched: false, Source: p.Name()}
	text = strings.TrimSpace(text)
	if text == "" {
		return noMatch, nil
	}

	params := url.Values{
		"address": {text},
		"key":     {p.apiKey},
	}

	body, err := p.fetcher.Get(ctx, p.baseURL+"?"+params.Encode())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.L().Warn("google: lookup failed", zap.String("address", text), zap.Error(err))
		return noMatch, nil
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		zap.L().Debug("google: malformed response", zap.String("address", text), zap.Error(err))
		return noMatch, nil
	}
	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		zap.L().Debug("google: no match", zap.String("address", text), zap.String("status", googleResp.Status))
		return noMatch, nil
	}

	var result googleResult
	if err := json.Unmarshal(googleResp.Results[0], &result); err != nil {
		return noMatch, nil
	}
	return &Result{
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		FormattedAddress: result.FormattedAddress,
		Precision:        googlePrecision(result.Geometry.LocationType, result.Types),
		Source:           p.Name(),
		Raw:              googleResp.Results[0],
		Matched:          true,
	}, nil
}

// googlePrecision maps Google's location_type and result types to a Precision.
func googlePrecision(locType string, types []string) Precision {
	switch strings.ToUpper(locType) {
	case "ROOFTOP", "RANGE_INTERPOLATED":
		return PrecisionExact
	}

	best := PrecisionUnknown
	for _, t := range types {
		var p Precision
		switch {
		case t == "street_address" || t == "premise" || t == "subpremise":
			p = PrecisionExact
		case t == "route" || t == "neighborhood" || t == "postal_code" || strings.HasPrefix(t, "sublocality"):
			p = PrecisionLocality
		case t == "administrative_area_level_3" || t == "administrative_area_level_4":
			p = PrecisionTown
		case t == "locality":
			p = PrecisionCity
		case t == "administrative_area_level_2":
			p = PrecisionDistrict
		case t == "administrative_area_level_1":
			p = PrecisionState
		default:
			continue
		}
		if PrecisionRank(p) < PrecisionRank(best) {
			best = p
		}
	}
	return best
}
