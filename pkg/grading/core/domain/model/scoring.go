package model

// ResultSource records how a scoring result was obtained from the AI response.
type ResultSource string

const (
	// SourceJSON means the response parsed as well-formed JSON.
	SourceJSON ResultSource = "json"
	// SourceRepaired means the response parsed only after JSON repair.
	SourceRepaired ResultSource = "repaired"
	// SourceRecovered means scores were recovered by the lenient text parser.
	SourceRecovered ResultSource = "recovered"
	// SourceDefault means the deterministic fallback result was used.
	SourceDefault ResultSource = "default"
	// SourceError means the scoring call itself failed and this is the
	// explicit error result that forces manual review.
	SourceError ResultSource = "error"
)

// DimensionScore is one rubric dimension's awarded score.
type DimensionScore struct {
	Name     string
	Score    float64
	MaxScore float64
	Reason   string
}

// ScoringResult is the validated, normalized output of the scoring engine.
// Invariants (enforced by validation, never assumed from upstream):
// 0 <= TotalScore <= rubric total, Confidence in [0,100], and Breakdown
// contains exactly one entry per rubric dimension.
type ScoringResult struct {
	TotalScore float64
	// Confidence is the AI capability's self-reported certainty, 0-100.
	Confidence float64
	Breakdown  []DimensionScore
	Feedback   string
	Issues     []string
	Source     ResultSource
	// ForceReview is set on the explicit error result so the decision step
	// routes to manual review deterministically.
	ForceReview bool
}
