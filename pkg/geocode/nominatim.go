package geocode

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/fetcher"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// NominatimProvider geocodes against an OpenStreetMap Nominatim search endpoint.
type NominatimProvider struct {
	baseURL      string
	countryCodes string
	fetcher      *fetcher.HTTPFetcher
}

type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
}

// NewNominatimProvider creates a NominatimProvider. Nominatim's usage policy
// caps anonymous clients at one request per second, which is the default rate.
func NewNominatimProvider(cfg Config) *NominatimProvider {
	if cfg.RequestsPerSecond <= 0 && cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerSecond = 1
	}
	base := cfg.BaseURL
	if base == "" {
		base = nominatimSearchURL
	}
	return &NominatimProvider{
		baseURL:      base,
		countryCodes: cfg.CountryCodes,
		fetcher:      newFetcher(string(ProviderNominatim), cfg, nil),
	}
}

// Name returns the provider identifier stored as the result source.
func (p *NominatimProvider) Name() string { return string(ProviderNominatim) }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, text string) (*Result, error) {
	noMatch := &Result{Matched: false, Source: p.Name()}
	text = strings.TrimSpace(text)
	if text == "" {
		return noMatch, nil
	}

	params := url.Values{
		"q":              {text},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}
	if p.countryCodes != "" {
		params.Set("countrycodes", p.countryCodes)
	}

	body, err := p.fetcher.Get(ctx, p.baseURL+"?"+params.Encode())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.L().Warn("nominatim: lookup failed", zap.String("address", text), zap.Error(err))
		return noMatch, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		zap.L().Debug("nominatim: no match", zap.String("address", text), zap.Error(err))
		return noMatch, nil
	}

	var place nominatimPlace
	if err := json.Unmarshal(raw[0], &place); err != nil {
		zap.L().Debug("nominatim: malformed place", zap.String("address", text), zap.Error(err))
		return noMatch, nil
	}
	lat, latErr := strconv.ParseFloat(place.Lat, 64)
	lon, lonErr := strconv.ParseFloat(place.Lon, 64)
	if latErr != nil || lonErr != nil {
		zap.L().Debug("nominatim: unparseable coordinates",
			zap.String("lat", place.Lat), zap.String("lon", place.Lon))
		return noMatch, nil
	}

	return &Result{
		Latitude:         lat,
		Longitude:        lon,
		FormattedAddress: place.DisplayName,
		Precision:        nominatimPrecision(place.AddressType, place.Type),
		Source:           p.Name(),
		Raw:              raw[0],
		Matched:          true,
	}, nil
}

// nominatimPrecision maps Nominatim's addresstype (falling back to type) to a Precision.
func nominatimPrecision(addressType, placeType string) Precision {
	t := strings.ToLower(addressType)
	if t == "" {
		t = strings.ToLower(placeType)
	}
	switch t {
	case "house", "building", "house_number", "amenity", "shop", "office":
		return PrecisionExact
	case "road", "neighbourhood", "suburb", "quarter", "city_block", "residential", "hamlet_block", "postcode":
		return PrecisionLocality
	case "village", "hamlet", "town", "isolated_dwelling":
		return PrecisionTown
	case "city", "municipality":
		return PrecisionCity
	case "county", "state_district", "district", "subdistrict":
		return PrecisionDistrict
	case "state", "region", "province":
		return PrecisionState
	default:
		return PrecisionUnknown
	}
}
