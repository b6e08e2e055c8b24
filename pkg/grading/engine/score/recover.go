package score

import (
	"regexp"
	"strconv"
	"strings"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// Keyword patterns for the lenient text recovery path. The vision capability
// sometimes answers in prose ("总分：42分，置信度80%") instead of JSON; these
// pull the numbers back out by keyword match.
var (
	totalScorePattern = regexp.MustCompile(`(?i)(?:总分|总得分|得分|total\s*score)\s*[:：]?\s*(\d+(?:\.\d+)?)`)
	confidencePattern = regexp.MustCompile(`(?i)(?:置信度|confidence)\s*[:：]?\s*(\d+(?:\.\d+)?)`)
)

// recoverFromText scans the response line by line for a total score, a
// confidence percentage and per-dimension scores. It reports ok=false when
// neither a total score nor any dimension score was found, in which case the
// caller falls back to the default result.
func recoverFromText(text string, rubric *model.ScoringRubric) (*model.ScoringResult, bool) {
	result := &model.ScoringResult{
		Confidence: defaultConfidence,
		Source:     model.SourceRecovered,
		Feedback:   strings.TrimSpace(text),
	}

	found := false

	if m := totalScorePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.TotalScore = v
			found = true
		}
	}
	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Confidence = v
		}
	}

	var dimTotal float64
	for _, d := range rubric.Dimensions {
		pattern, err := dimensionPattern(d.Name)
		if err != nil {
			continue
		}
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		result.Breakdown = append(result.Breakdown, model.DimensionScore{
			Name:     d.Name,
			Score:    v,
			MaxScore: d.MaxScore,
			Reason:   "从文本中恢复",
		})
		dimTotal += v
		found = true
	}

	if !found {
		return nil, false
	}

	// A missing total falls back to the dimension sum when one exists.
	if result.TotalScore == 0 && dimTotal > 0 {
		result.TotalScore = dimTotal
	}

	result.Issues = append(result.Issues, "批改结果非JSON格式，得分由文本恢复，建议人工复核")
	return result, true
}

// dimensionPattern builds the keyword pattern for one rubric dimension name.
func dimensionPattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile(regexp.QuoteMeta(name) + `\s*[:：]?\s*(\d+(?:\.\d+)?)`)
}
