package model

import "time"

// ScoreResult holds the integer scores for a project, each in [0,100].
// AmenityScore is nil while onsite amenities are unscored.
type ScoreResult struct {
	AmenityScore      *int   `json:"amenity_score"`
	LocationScore     int    `json:"location_score"`
	ConnectivityScore int    `json:"connectivity_score"`
	DailyNeedsScore   int    `json:"daily_needs_score"`
	SocialInfraScore  int    `json:"social_infra_score"`
	OverallScore      int    `json:"overall_score"`
	ScoreVersion      string `json:"score_version"`
}

// ScoreComputation is a ScoreResult plus the audit trail of its inputs.
type ScoreComputation struct {
	ScoreResult
	// MissingInputs lists unresolved input keys, sorted.
	MissingInputs []string `json:"missing_inputs"`
	// InputsUsed maps every numeric input consumed, e.g. "count:grocery@1km".
	InputsUsed map[string]float64 `json:"inputs_used"`
}

// ProjectScore is a persisted ScoreComputation.
type ProjectScore struct {
	ProjectID string `json:"project_id"`
	ScoreComputation
	ComputedAt time.Time `json:"computed_at"`
}
