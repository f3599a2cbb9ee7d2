package geocode

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultCountry is appended when AddressParts.Country is empty.
const DefaultCountry = "India"

// Component names, in output order.
const (
	ComponentAddressLine = "address_line"
	ComponentLocality    = "locality"
	ComponentTehsil      = "tehsil"
	ComponentDistrict    = "district"
	ComponentState       = "state"
	ComponentPincode     = "pincode"
	ComponentCountry     = "country"
)

// AddressParts is a structured property address. Every field is optional.
type AddressParts struct {
	AddressLine string `json:"address_line,omitempty"`
	Locality    string `json:"locality,omitempty"`
	Tehsil      string `json:"tehsil,omitempty"`
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
	StateCode   string `json:"state_code,omitempty"`
	Pincode     string `json:"pincode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// IsEmpty reports whether no address field carries text.
func (p AddressParts) IsEmpty() bool {
	return strings.TrimSpace(p.AddressLine+p.Locality+p.Tehsil+p.District+p.State+p.StateCode+p.Pincode) == ""
}

// NormalizedAddress is the canonical geocoder-ready rendering of AddressParts.
type NormalizedAddress struct {
	// Text is the comma-joined address, or "" when nothing below country level resolved.
	Text          string   `json:"text"`
	Used          []string `json:"used"`
	Missing       []string `json:"missing"`
	LowConfidence bool     `json:"low_confidence"`
}

type adminPrefix struct {
	prefix string
	label  string
}

// adminPrefixes is sorted longest first so "tahsildar" wins over "tahsil"
// and "distt." over "dist".
var adminPrefixes = func() []adminPrefix {
	table := []adminPrefix{
		{"tahsildar", "Tehsil"},
		{"tahsil", "Tehsil"},
		{"tehsil", "Tehsil"},
		{"tahasil", "Tehsil"},
		{"taluka", "Tehsil"},
		{"taluk", "Tehsil"},
		{"tah.", "Tehsil"},
		{"teh.", "Tehsil"},
		{"tah", "Tehsil"},
		{"teh", "Tehsil"},
		{"district", "District"},
		{"distt.", "District"},
		{"distt", "District"},
		{"dist.", "District"},
		{"dist", "District"},
		{"zilla", "District"},
		{"zila", "District"},
		{"jila", "District"},
	}
	sort.SliceStable(table, func(i, j int) bool {
		return len(table[i].prefix) > len(table[j].prefix)
	})
	return table
}()

// stateCodes maps Indian vehicle/ISO-style state codes to state names.
var stateCodes = map[string]string{
	"AN": "Andaman and Nicobar Islands",
	"AP": "Andhra Pradesh",
	"AR": "Arunachal Pradesh",
	"AS": "Assam",
	"BR": "Bihar",
	"CG": "Chhattisgarh",
	"CT": "Chhattisgarh",
	"CH": "Chandigarh",
	"DD": "Dadra and Nagar Haveli and Daman and Diu",
	"DN": "Dadra and Nagar Haveli and Daman and Diu",
	"DL": "Delhi",
	"GA": "Goa",
	"GJ": "Gujarat",
	"HP": "Himachal Pradesh",
	"HR": "Haryana",
	"JH": "Jharkhand",
	"JK": "Jammu and Kashmir",
	"KA": "Karnataka",
	"KL": "Kerala",
	"LA": "Ladakh",
	"LD": "Lakshadweep",
	"MH": "Maharashtra",
	"ML": "Meghalaya",
	"MN": "Manipur",
	"MP": "Madhya Pradesh",
	"MZ": "Mizoram",
	"NL": "Nagaland",
	"OD": "Odisha",
	"OR": "Odisha",
	"PB": "Punjab",
	"PY": "Puducherry",
	"RJ": "Rajasthan",
	"SK": "Sikkim",
	"TG": "Telangana",
	"TS": "Telangana",
	"TN": "Tamil Nadu",
	"TR": "Tripura",
	"UK": "Uttarakhand",
	"UT": "Uttarakhand",
	"UP": "Uttar Pradesh",
	"WB": "West Bengal",
}

// StateName resolves a state code ("CG") to its name, or "" if unknown.
func StateName(code string) string {
	return stateCodes[strings.ToUpper(strings.TrimSpace(code))]
}

// Normalize builds the canonical address string from parts.
func Normalize(parts AddressParts) NormalizedAddress {
	type field struct {
		name  string
		value string
	}

	state := cleanText(parts.State)
	if state == "" {
		state = StateName(parts.StateCode)
	}
	country := cleanText(parts.Country)
	if country == "" {
		country = DefaultCountry
	}

	fields := []field{
		{ComponentAddressLine, expandAdmin(cleanText(parts.AddressLine), "")},
		{ComponentLocality, expandAdmin(cleanText(parts.Locality), "")},
		{ComponentTehsil, expandAdmin(cleanText(parts.Tehsil), "Tehsil")},
		{ComponentDistrict, expandAdmin(cleanText(parts.District), "District")},
		{ComponentState, state},
		{ComponentPincode, cleanText(parts.Pincode)},
	}

	var out NormalizedAddress
	values := make([]string, 0, len(fields)+1)
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.value == "" {
			out.Missing = append(out.Missing, f.name)
			continue
		}
		present[f.name] = true
		out.Used = append(out.Used, f.name)
		values = append(values, f.value)
	}

	resolved := len(values)
	if resolved == 0 {
		out.LowConfidence = true
		return out
	}

	values = append(values, country)
	out.Used = append(out.Used, ComponentCountry)
	out.Text = strings.Join(values, ", ")

	hasLocal := present[ComponentAddressLine] || present[ComponentLocality] || present[ComponentTehsil]
	out.LowConfidence = resolved < 3 || (present[ComponentDistrict] && !hasLocal)
	return out
}

// cleanText applies NFKC folding, collapses whitespace and comma runs, and
// trims stray separators.
func cleanText(s string) string {
	s = norm.NFKC.String(s)
	pieces := strings.Split(s, ",")
	kept := pieces[:0]
	for _, p := range pieces {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// expandAdmin replaces a leading administrative abbreviation with its full
// label. When defaultLabel is set the label is applied even without a prefix.
func expandAdmin(value, defaultLabel string) string {
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	for _, ap := range adminPrefixes {
		if !strings.HasPrefix(lower, ap.prefix) {
			continue
		}
		rest := value[len(ap.prefix):]
		if !strings.HasSuffix(ap.prefix, ".") && rest != "" {
			r := []rune(rest)[0]
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		rest = strings.TrimLeft(rest, " .:-,")
		if rest == "" {
			return ""
		}
		return ap.label + " " + rest
	}
	if defaultLabel != "" {
		return defaultLabel + " " + value
	}
	return value
}
