// Package score implements AI scoring of captured answer images.
// The response from the vision capability flows through a parse chain
// (strict JSON, repaired JSON, lenient text recovery, deterministic default)
// and the chosen result is always validated against the rubric before it is
// returned, so downstream code can rely on the documented bounds no matter
// how malformed the upstream response was.
package score

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const componentName = "score"

// Default result parameters used when no score could be extracted at all.
const (
	defaultScoreRatio = 0.6
	defaultConfidence = 50.0
)

const scoringPromptTemplate = `你是一位资深阅卷教师，请根据评分标准批改图片中的学生作答。

学生：%s
评分标准（总分 %.0f 分）：
%s
%s
请严格以JSON格式返回批改结果，不要输出任何其他文字：
{"totalScore": <总分>, "confidence": <0-100的置信度>, "feedback": "<总体评语>", "issues": ["<异常1>"], "breakdown": [{"name": "<维度名>", "score": <得分>, "reason": "<给分理由>"}]}`

// scoringResponse is the JSON shape expected from the vision capability.
type scoringResponse struct {
	TotalScore float64  `json:"totalScore"`
	Confidence float64  `json:"confidence"`
	Feedback   string   `json:"feedback"`
	Issues     []string `json:"issues"`
	Breakdown  []struct {
		Name   string  `json:"name"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"breakdown"`
}

// Engine is the default ScoringEngine implementation.
type Engine struct {
	llm  port.VisionCompletion
	opts port.CompletionOptions
}

// NewEngine creates an Engine with completion options taken from configuration.
func NewEngine(llm port.VisionCompletion, cfg *config.LLMConfig) *Engine {
	return &Engine{
		llm: llm,
		opts: port.CompletionOptions{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}
}

// Score grades the image against the rubric. A response that cannot be parsed
// degrades through the parse chain down to the deterministic default result;
// only a failure of the capability call itself is returned as an error, so
// the orchestrator can branch on its kind.
func (e *Engine) Score(ctx context.Context, image *model.ImagePayload, rubric *model.ScoringRubric, student model.StudentInfo) (*model.ScoringResult, error) {
	if image == nil {
		return nil, exception.NewGradingErrorf(componentName, exception.KindUnknown, "no image payload to score")
	}
	if rubric == nil {
		return nil, exception.NewGradingErrorf(componentName, exception.KindUnknown, "no rubric to score against")
	}

	prompt := buildScoringPrompt(rubric, student)
	text, err := e.llm.CompleteWithImage(ctx, prompt, image, e.opts)
	if err != nil {
		// The LLM adapter tags transport failures; preserve the kind so the
		// orchestrator can retry network errors and escalate the rest.
		return nil, exception.NewGradingError(componentName, "vision scoring call failed", exception.KindOf(err), err)
	}

	result := e.parse(text, rubric)
	Validate(result, rubric)
	return result, nil
}

// parse walks the parse chain and returns the first usable result, tagged
// with its source.
func (e *Engine) parse(text string, rubric *model.ScoringRubric) *model.ScoringResult {
	raw := extractJSONObject(text)

	var resp scoringResponse
	if err := json.Unmarshal([]byte(raw), &resp); err == nil {
		return fromResponse(resp, model.SourceJSON)
	}

	if repaired, err := jsonrepair.JSONRepair(raw); err == nil {
		if err := json.Unmarshal([]byte(repaired), &resp); err == nil {
			logger.Debugf("Scoring response parsed after JSON repair.")
			return fromResponse(resp, model.SourceRepaired)
		}
	}

	if recovered, ok := recoverFromText(text, rubric); ok {
		logger.Warnf("Scoring response was not JSON; recovered scores from text.")
		return recovered
	}

	logger.Warnf("Scoring response yielded no scores; using deterministic default result.")
	return DefaultResult(rubric)
}

// fromResponse converts the decoded response into a result. Bounds are not
// enforced here; Validate does that.
func fromResponse(resp scoringResponse, source model.ResultSource) *model.ScoringResult {
	result := &model.ScoringResult{
		TotalScore: resp.TotalScore,
		Confidence: resp.Confidence,
		Feedback:   resp.Feedback,
		Issues:     resp.Issues,
		Source:     source,
	}
	for _, b := range resp.Breakdown {
		result.Breakdown = append(result.Breakdown, model.DimensionScore{
			Name:   b.Name,
			Score:  b.Score,
			Reason: b.Reason,
		})
	}
	return result
}

// DefaultResult is the deterministic fallback when nothing could be parsed:
// 60% of the maximum per dimension with confidence 50.
func DefaultResult(rubric *model.ScoringRubric) *model.ScoringResult {
	result := &model.ScoringResult{
		Confidence: defaultConfidence,
		Feedback:   "自动批改结果不可解析，已按默认比例给分，建议人工复核。",
		Source:     model.SourceDefault,
	}
	for _, d := range rubric.Dimensions {
		s := d.MaxScore * defaultScoreRatio
		result.TotalScore += s
		result.Breakdown = append(result.Breakdown, model.DimensionScore{
			Name:     d.Name,
			Score:    s,
			MaxScore: d.MaxScore,
			Reason:   "默认给分",
		})
	}
	return result
}

// ErrorResult is the explicit failure result for an outright scoring-call
// failure: confidence 0 and all dimension scores 0, tagged for mandatory
// manual review. Unlike the default result this is never silently accepted.
func ErrorResult(rubric *model.ScoringRubric, err error) *model.ScoringResult {
	result := &model.ScoringResult{
		Confidence:  0,
		Feedback:    "AI批改失败，需要人工批改。",
		Issues:      []string{exception.ExtractErrorMessage(err)},
		Source:      model.SourceError,
		ForceReview: true,
	}
	if rubric != nil {
		for _, d := range rubric.Dimensions {
			result.Breakdown = append(result.Breakdown, model.DimensionScore{
				Name:     d.Name,
				Score:    0,
				MaxScore: d.MaxScore,
				Reason:   "批改失败",
			})
		}
	}
	return result
}

// Validate normalizes the result in place so it honors the rubric bounds:
// the total score is clamped into [0, rubric total], confidence into [0,100],
// and the breakdown is re-synchronized to exactly one entry per rubric
// dimension in rubric order. Missing entries are synthesized with score 0,
// surplus entries are dropped, and per-dimension scores are clamped to their
// maximum.
func Validate(result *model.ScoringResult, rubric *model.ScoringRubric) {
	if result.TotalScore < 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("总分 %.1f 低于下限，已修正为 0", result.TotalScore))
		result.TotalScore = 0
	}
	if result.TotalScore > rubric.TotalScore {
		result.Issues = append(result.Issues, fmt.Sprintf("总分 %.1f 超出满分 %.1f，已修正", result.TotalScore, rubric.TotalScore))
		result.TotalScore = rubric.TotalScore
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 100 {
		result.Confidence = 100
	}

	byName := make(map[string]model.DimensionScore, len(result.Breakdown))
	for _, b := range result.Breakdown {
		if _, dup := byName[b.Name]; dup {
			result.Issues = append(result.Issues, fmt.Sprintf("维度 %q 出现重复条目，已保留第一条", b.Name))
			continue
		}
		byName[b.Name] = b
	}

	synced := make([]model.DimensionScore, 0, len(rubric.Dimensions))
	for _, d := range rubric.Dimensions {
		entry, ok := byName[d.Name]
		if !ok {
			entry = model.DimensionScore{
				Name:   d.Name,
				Score:  0,
				Reason: "批改结果缺失该维度，按 0 分补齐",
			}
			result.Issues = append(result.Issues, fmt.Sprintf("维度 %q 在批改结果中缺失", d.Name))
		}
		delete(byName, d.Name)

		entry.MaxScore = d.MaxScore
		if entry.Score < 0 {
			entry.Score = 0
		}
		if entry.Score > d.MaxScore {
			result.Issues = append(result.Issues, fmt.Sprintf("维度 %q 得分 %.1f 超出上限 %.1f，已修正", d.Name, entry.Score, d.MaxScore))
			entry.Score = d.MaxScore
		}
		synced = append(synced, entry)
	}
	for name := range byName {
		result.Issues = append(result.Issues, fmt.Sprintf("批改结果包含未知维度 %q，已忽略", name))
	}
	result.Breakdown = synced
}

// buildScoringPrompt renders the grading prompt from the rubric and student info.
func buildScoringPrompt(rubric *model.ScoringRubric, student model.StudentInfo) string {
	var dims strings.Builder
	for _, d := range rubric.Dimensions {
		fmt.Fprintf(&dims, "- %s（满分 %.0f 分）：%s\n", d.Name, d.MaxScore, d.Description)
	}

	var hints strings.Builder
	if len(rubric.KeyPoints) > 0 {
		fmt.Fprintf(&hints, "答案要点：%s\n", strings.Join(rubric.KeyPoints, "；"))
	}
	if len(rubric.CommonErrors) > 0 {
		fmt.Fprintf(&hints, "常见错误：%s\n", strings.Join(rubric.CommonErrors, "；"))
	}

	studentName := student.Name
	if studentName == "" {
		studentName = "（未知）"
	}

	return fmt.Sprintf(scoringPromptTemplate, studentName, rubric.TotalScore, dims.String(), hints.String())
}

// extractJSONObject trims any prose surrounding the first JSON object in the
// response.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

var _ port.ScoringEngine = (*Engine)(nil)
