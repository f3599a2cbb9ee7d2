package geocode

import "math"

var precisionRanks = map[Precision]int{
	PrecisionExact:    0,
	PrecisionLocality: 1,
	PrecisionTown:     4,
	PrecisionCity:     5,
	PrecisionDistrict: 6,
	PrecisionState:    7,
	PrecisionUnknown:  9,
}

var precisionConfidence = map[Precision]float64{
	PrecisionExact:    0.95,
	PrecisionLocality: 0.85,
	PrecisionTown:     0.70,
	PrecisionCity:     0.60,
	PrecisionDistrict: 0.45,
	PrecisionState:    0.30,
	PrecisionUnknown:  0.20,
}

// PrecisionRank orders precisions; lower is more specific. Unrecognised labels rank as unknown.
func PrecisionRank(p Precision) int {
	if r, ok := precisionRanks[p]; ok {
		return r
	}
	return precisionRanks[PrecisionUnknown]
}

// Confidence scores a resolved geocode in [0,1] from its precision, penalised
// by 0.8 for a low-confidence address and by 0.9 per fallback step.
func Confidence(p Precision, lowConfidence bool, step int) float64 {
	c, ok := precisionConfidence[p]
	if !ok {
		c = precisionConfidence[PrecisionUnknown]
	}
	if lowConfidence {
		c *= 0.8
	}
	if step > 0 {
		c *= math.Pow(0.9, float64(step))
	}
	return math.Round(c*1000) / 1000
}
