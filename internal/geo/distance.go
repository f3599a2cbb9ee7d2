// Package geo provides the great-circle distance and bounding-box helpers used by the amenity cache.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by Haversine.
const EarthRadiusKM = 6371.0

// KMPerDegree approximates the length of one degree of latitude. It is also
// applied to longitude for the bounding-box pre-filter, which is then refined
// by an exact Haversine check.
const KMPerDegree = 111.0

// Haversine returns the great-circle distance in kilometers between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * EarthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// BBox is a latitude/longitude rectangle.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundingBox returns the box extending radiusKM/111 degrees from the center
// along both axes. It is a coarse pre-filter; callers still apply Haversine.
func BoundingBox(lat, lon, radiusKM float64) BBox {
	d := radiusKM / KMPerDegree
	return BBox{
		MinLat: lat - d,
		MinLon: lon - d,
		MaxLat: lat + d,
		MaxLon: lon + d,
	}
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
