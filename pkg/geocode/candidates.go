package geocode

// Candidate is one fallback address string. Step counts how many fallback
// levels were dropped to reach it (0 for the full address).
type Candidate struct {
	Address NormalizedAddress
	Step    int
}

// Candidates returns decreasing-specificity address strings: the full
// address, then without address_line, then also without locality, then also
// without tehsil. Empty and duplicate strings are skipped.
func Candidates(parts AddressParts) []Candidate {
	noLine := parts
	noLine.AddressLine = ""

	noLocality := noLine
	noLocality.Locality = ""

	noTehsil := noLocality
	noTehsil.Tehsil = ""

	seen := make(map[string]struct{}, 4)
	var out []Candidate
	for _, p := range []AddressParts{parts, noLine, noLocality, noTehsil} {
		na := Normalize(p)
		if na.Text == "" {
			continue
		}
		if _, dup := seen[na.Text]; dup {
			continue
		}
		seen[na.Text] = struct{}{}
		out = append(out, Candidate{Address: na, Step: len(out)})
	}
	return out
}

// CandidateStrings returns only the text of Candidates(parts).
func CandidateStrings(parts AddressParts) []string {
	cands := Candidates(parts)
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Address.Text
	}
	return out
}
