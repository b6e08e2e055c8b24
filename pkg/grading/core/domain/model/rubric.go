package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// QuestionType distinguishes the two rubric families.
type QuestionType string

const (
	QuestionSubjective QuestionType = "subjective"
	QuestionObjective  QuestionType = "objective"
)

// RubricDimension is one weighted scoring dimension.
type RubricDimension struct {
	Name        string
	Description string
	MaxScore    float64
	// Weight is informational narrative emphasis; it never changes MaxScore.
	Weight float64
}

// ScoringRubric is a weighted set of scoring dimensions. It is immutable once
// generated for a given (question, referenceAnswer, questionType) triple
// within a workflow.
type ScoringRubric struct {
	QuestionType QuestionType
	Dimensions   []RubricDimension
	// TotalScore always equals the sum of the dimension max scores.
	TotalScore float64
	// Difficulty is the analysis capability's 1-10 estimate, 0 when unknown.
	Difficulty int
	// KeyPoints and CommonErrors carry the analysis narrative for feedback.
	KeyPoints    []string
	CommonErrors []string
}

// Validate checks the rubric invariants: non-empty dimensions and a total
// score matching the dimension sum.
func (r ScoringRubric) Validate() error {
	if len(r.Dimensions) == 0 {
		return fmt.Errorf("rubric has no dimensions")
	}
	var sum float64
	for _, d := range r.Dimensions {
		if d.MaxScore < 0 {
			return fmt.Errorf("rubric dimension %q has negative max score", d.Name)
		}
		sum += d.MaxScore
	}
	if sum != r.TotalScore {
		return fmt.Errorf("rubric total score %.2f does not match dimension sum %.2f", r.TotalScore, sum)
	}
	return nil
}

// RubricKey derives the canonical cache key of a rubric input triple.
func RubricKey(question, referenceAnswer string, questionType QuestionType) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", question, referenceAnswer, questionType)
	return hex.EncodeToString(h.Sum(nil))
}
