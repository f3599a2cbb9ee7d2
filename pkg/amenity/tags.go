package amenity

import "sort"

// Canonical amenity types.
const (
	TypeGrocery     = "grocery"
	TypeSupermarket = "supermarket"
	TypePharmacy    = "pharmacy"
	TypeHospital    = "hospital"
	TypeSchool      = "school"
	TypeCollege     = "college"
	TypePark        = "park"
	TypeRestaurant  = "restaurant"
	TypeMall        = "mall"
	TypeTransitStop = "transit_stop"
	TypeBank        = "bank"
	TypeATM         = "atm"
)

// Tag is one OpenStreetMap key=value filter.
type Tag struct {
	Key   string
	Value string
}

var tagMap = map[string][]Tag{
	TypeGrocery:     {{"shop", "convenience"}, {"shop", "greengrocer"}, {"shop", "grocery"}},
	TypeSupermarket: {{"shop", "supermarket"}},
	TypePharmacy:    {{"amenity", "pharmacy"}, {"healthcare", "pharmacy"}},
	TypeHospital:    {{"amenity", "hospital"}, {"healthcare", "hospital"}},
	TypeSchool:      {{"amenity", "school"}},
	TypeCollege:     {{"amenity", "college"}, {"amenity", "university"}},
	TypePark:        {{"leisure", "park"}},
	TypeRestaurant:  {{"amenity", "restaurant"}},
	TypeMall:        {{"shop", "mall"}, {"shop", "department_store"}},
	TypeTransitStop: {{"highway", "bus_stop"}, {"railway", "station"}, {"railway", "halt"}, {"station", "subway"}},
	TypeBank:        {{"amenity", "bank"}},
	TypeATM:         {{"amenity", "atm"}},
}

// Tags returns the OSM filters for a canonical amenity type.
func Tags(amenityType string) ([]Tag, bool) {
	tags, ok := tagMap[amenityType]
	return tags, ok
}

// Types lists every canonical amenity type, sorted.
func Types() []string {
	out := make([]string, 0, len(tagMap))
	for t := range tagMap {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
