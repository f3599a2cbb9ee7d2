// Package location chooses a project's canonical coordinate among its
// candidate locations.
package location

import (
	"math"
	"sort"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// coordTolerance is the float equality tolerance for coordinates, about 1cm.
const coordTolerance = 1e-7

var sourcePriority = map[model.SourceType]int{
	model.SourceManualPin:         10,
	model.SourceRegistryPin:       20,
	model.SourceGeocodeNormalized: 30,
	model.SourceDistrictCentroid:  40,
	model.SourceTehsilCentroid:    50,
	model.SourceOther:             100,
}

// Priority ranks a candidate; lower wins. Precision only refines
// geocode_normalized candidates.
func Priority(loc model.ProjectLocation) int {
	p, ok := sourcePriority[loc.SourceType]
	if !ok {
		p = sourcePriority[model.SourceOther]
	}
	if loc.SourceType == model.SourceGeocodeNormalized {
		p += geocode.PrecisionRank(geocode.Precision(loc.PrecisionLevel))
	}
	return p
}

// Select returns the canonical candidate: active candidates ordered by
// priority ascending, confidence descending (nil as 0), then newest first.
// It returns false when no candidate is active.
func Select(cands []model.ProjectLocation) (model.ProjectLocation, bool) {
	active := make([]model.ProjectLocation, 0, len(cands))
	for _, c := range cands {
		if c.IsActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return model.ProjectLocation{}, false
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if pa, pb := Priority(a), Priority(b); pa != pb {
			return pa < pb
		}
		if ca, cb := confidence(a), confidence(b); ca != cb {
			return ca > cb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return active[0], true
}

func confidence(loc model.ProjectLocation) float64 {
	if loc.ConfidenceScore == nil {
		return 0
	}
	return *loc.ConfidenceScore
}

// Apply copies the canonical location onto the project and reports whether
// anything changed. Unchanged coordinates, source and precision leave the
// project untouched so callers can skip the write.
func Apply(p *model.Project, loc model.ProjectLocation) bool {
	if p.HasCoordinates() &&
		sameCoord(*p.Latitude, loc.Latitude) &&
		sameCoord(*p.Longitude, loc.Longitude) &&
		p.GeocodingSource == string(loc.SourceType) &&
		p.GeoPrecision == loc.PrecisionLevel {
		return false
	}

	lat, lon := loc.Latitude, loc.Longitude
	p.Latitude = &lat
	p.Longitude = &lon
	p.GeocodingSource = string(loc.SourceType)
	p.GeoPrecision = loc.PrecisionLevel
	if loc.ConfidenceScore != nil {
		c := *loc.ConfidenceScore
		p.GeoConfidence = &c
	} else {
		p.GeoConfidence = nil
	}
	if loc.FormattedAddress != "" {
		p.GeoFormattedAddress = loc.FormattedAddress
	}
	return true
}

func sameCoord(a, b float64) bool {
	return math.Abs(a-b) <= coordTolerance
}
