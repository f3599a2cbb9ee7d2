package geocode

import (
	"context"

	"go.uber.org/zap"
)

// Resolution is the outcome of geocoding one AddressParts value.
type Resolution struct {
	// Normalized is the full-address normalization, whatever candidate matched.
	Normalized NormalizedAddress
	// Result is nil when every candidate failed.
	Result *Result
	// Candidate is the address string that produced Result.
	Candidate  string
	Step       int
	FromCache  bool
	Confidence float64
}

// Matched reports whether any candidate resolved.
func (r *Resolution) Matched() bool {
	return r != nil && r.Result != nil && r.Result.Matched
}

// Client is the geocoding façade: it walks the fallback candidates, consulting
// the cache before every provider call.
type Client struct {
	provider Provider
	cache    Cache
}

// NewClient creates a Client. cache may be nil.
func NewClient(provider Provider, cache Cache) *Client {
	return &Client{provider: provider, cache: cache}
}

// Geocode resolves parts by trying each candidate in order until the cache or
// the provider yields a match. An unmatched Resolution is not an error; only
// context cancellation is.
func (c *Client) Geocode(ctx context.Context, parts AddressParts) (*Resolution, error) {
	cands := Candidates(parts)
	res := &Resolution{Normalized: Normalize(parts)}

	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, fromCache, err := c.GeocodeText(ctx, cand.Address.Text)
		if err != nil {
			return nil, err
		}
		if r == nil || !r.Matched {
			continue
		}
		res.Result = r
		res.Candidate = cand.Address.Text
		res.Step = cand.Step
		res.FromCache = fromCache
		res.Confidence = Confidence(r.Precision, res.Normalized.LowConfidence, cand.Step)
		return res, nil
	}

	zap.L().Debug("geocode: all candidates failed",
		zap.String("address", res.Normalized.Text),
		zap.Int("candidates", len(cands)),
	)
	return res, nil
}

// GeocodeText resolves a single address string, cache first. Cache read or
// write failures are logged and treated as a miss.
func (c *Client) GeocodeText(ctx context.Context, text string) (*Result, bool, error) {
	if text == "" {
		return nil, false, nil
	}

	if c.cache != nil {
		cached, found, err := c.cache.Get(ctx, text)
		switch {
		case err != nil:
			zap.L().Warn("geocode: cache read failed, treating as miss", zap.String("address", text), zap.Error(err))
		case found && cached != nil && cached.Matched:
			zap.L().Debug("geocode: cache hit", zap.String("address", text))
			return cached, true, nil
		}
	}

	r, err := c.provider.Geocode(ctx, text)
	if err != nil {
		return nil, false, err
	}
	if r == nil || !r.Matched {
		return r, false, nil
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, text, r); err != nil {
			zap.L().Warn("geocode: cache write failed", zap.String("address", text), zap.Error(err))
		}
	}
	return r, false, nil
}
