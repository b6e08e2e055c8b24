// Package rubric produces scoring rubrics for grading questions.
// Analysis of the question (difficulty, key points, common errors) is
// delegated to a text-generation capability; the rubric dimensions themselves
// come from fixed templates per question type. Generation is best-effort: any
// analysis failure falls back to the deterministic default rubric instead of
// blocking the pipeline.
package rubric

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonrepair"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// Dimension names used by the rubric templates and the weight adjustment rule.
const (
	DimensionCompleteness = "内容完整性"
	DimensionAccuracy     = "准确性"
	DimensionLogic        = "逻辑结构"
	DimensionInnovation   = "创新性"
	DimensionCorrectness  = "正确性"
)

// Weight bumps applied when the estimated difficulty reaches 8/10. Weights
// are narrative emphasis only; max scores are never changed.
const (
	difficultyWeightThreshold = 8
	innovationWeightBump      = 0.05
	completenessWeightBump    = 0.03
)

const analysisPromptTemplate = `你是一位资深阅卷教师。请分析下面的题目和参考答案，严格以JSON格式返回分析结果，不要输出任何其他文字。

题目：
%s

参考答案：
%s

返回格式：
{"difficulty": <1-10的整数难度估计>, "keyPoints": ["要点1", "要点2"], "commonErrors": ["常见错误1", "常见错误2"]}`

// analysisResponse is the JSON shape expected from the analysis capability.
type analysisResponse struct {
	Difficulty   int      `json:"difficulty"`
	KeyPoints    []string `json:"keyPoints"`
	CommonErrors []string `json:"commonErrors"`
}

// Generator is the default RubricGenerator implementation. Generated rubrics
// are cached by their (question, referenceAnswer, questionType) key so a
// retried workflow reuses the analysis instead of repeating the LLM call.
type Generator struct {
	llm  port.TextCompletion
	opts port.CompletionOptions

	mu    sync.Mutex
	cache map[string]*model.ScoringRubric
}

// NewGenerator creates a Generator with completion options taken from configuration.
func NewGenerator(llm port.TextCompletion, cfg *config.LLMConfig) *Generator {
	return &Generator{
		llm: llm,
		opts: port.CompletionOptions{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		cache: make(map[string]*model.ScoringRubric),
	}
}

// Generate returns the rubric for the question, reusing a cached one when the
// input triple has been analyzed before. It never returns an error for
// analysis failures; those degrade to the default rubric for the question type.
func (g *Generator) Generate(ctx context.Context, question, referenceAnswer string, questionType model.QuestionType) (*model.ScoringRubric, error) {
	key := model.RubricKey(question, referenceAnswer, questionType)

	g.mu.Lock()
	if cached, ok := g.cache[key]; ok {
		g.mu.Unlock()
		logger.Debugf("Rubric cache hit for key %s.", key[:12])
		return cached, nil
	}
	g.mu.Unlock()

	rubric := DefaultRubric(questionType)

	analysis, ok := g.analyze(ctx, question, referenceAnswer)
	if ok {
		rubric.Difficulty = analysis.Difficulty
		rubric.KeyPoints = analysis.KeyPoints
		rubric.CommonErrors = analysis.CommonErrors
		applyDifficultyWeights(rubric)
	}

	g.mu.Lock()
	g.cache[key] = rubric
	g.mu.Unlock()
	return rubric, nil
}

// analyze calls the text capability and parses its JSON response, repairing
// it when malformed. Returns ok=false when no usable analysis was obtained.
func (g *Generator) analyze(ctx context.Context, question, referenceAnswer string) (analysisResponse, bool) {
	text, err := g.llm.Complete(ctx, buildAnalysisPrompt(question, referenceAnswer), g.opts)
	if err != nil {
		logger.Warnf("Question analysis failed, using default rubric: %v", err)
		return analysisResponse{}, false
	}

	var analysis analysisResponse
	if err := json.Unmarshal([]byte(extractJSONObject(text)), &analysis); err == nil {
		return clampAnalysis(analysis), true
	}

	repaired, repairErr := jsonrepair.JSONRepair(extractJSONObject(text))
	if repairErr != nil {
		logger.Warnf("Analysis response could not be repaired, using default rubric: %v", repairErr)
		return analysisResponse{}, false
	}
	if err := json.Unmarshal([]byte(repaired), &analysis); err != nil {
		logger.Warnf("Repaired analysis response still unparsable, using default rubric: %v", err)
		return analysisResponse{}, false
	}
	return clampAnalysis(analysis), true
}

// clampAnalysis keeps the difficulty estimate inside its documented 1-10 range.
func clampAnalysis(a analysisResponse) analysisResponse {
	if a.Difficulty < 0 {
		a.Difficulty = 0
	}
	if a.Difficulty > 10 {
		a.Difficulty = 10
	}
	return a
}

// applyDifficultyWeights bumps the innovation and completeness weights on
// hard questions.
func applyDifficultyWeights(r *model.ScoringRubric) {
	if r.Difficulty < difficultyWeightThreshold {
		return
	}
	for i := range r.Dimensions {
		switch r.Dimensions[i].Name {
		case DimensionInnovation:
			r.Dimensions[i].Weight += innovationWeightBump
		case DimensionCompleteness:
			r.Dimensions[i].Weight += completenessWeightBump
		}
	}
}

// DefaultRubric returns the fixed rubric template for the question type.
func DefaultRubric(questionType model.QuestionType) *model.ScoringRubric {
	if questionType == model.QuestionObjective {
		return &model.ScoringRubric{
			QuestionType: model.QuestionObjective,
			Dimensions: []model.RubricDimension{
				{Name: DimensionCorrectness, Description: "答案与标准答案的一致程度", MaxScore: 100, Weight: 1.0},
			},
			TotalScore: 100,
		}
	}
	return &model.ScoringRubric{
		QuestionType: model.QuestionSubjective,
		Dimensions: []model.RubricDimension{
			{Name: DimensionCompleteness, Description: "答案覆盖要点的完整程度", MaxScore: 30, Weight: 0.3},
			{Name: DimensionAccuracy, Description: "知识点与论述的准确程度", MaxScore: 40, Weight: 0.4},
			{Name: DimensionLogic, Description: "论述的条理与逻辑结构", MaxScore: 20, Weight: 0.2},
			{Name: DimensionInnovation, Description: "见解的新颖与创造性", MaxScore: 10, Weight: 0.1},
		},
		TotalScore: 100,
	}
}

// buildAnalysisPrompt renders the analysis prompt for the question.
func buildAnalysisPrompt(question, referenceAnswer string) string {
	prompt := analysisPromptTemplate
	prompt = strings.Replace(prompt, "%s", question, 1)
	prompt = strings.Replace(prompt, "%s", referenceAnswer, 1)
	return prompt
}

// extractJSONObject trims any prose surrounding the first JSON object in the
// response, a common failure mode of chatty models.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

var _ port.RubricGenerator = (*Generator)(nil)
