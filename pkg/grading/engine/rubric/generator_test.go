package rubric_test

import (
	"context"
	"errors"
	"testing"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/rubric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockCompletion struct {
	response string
	err      error
	calls    int
}

func (m *MockCompletion) Complete(ctx context.Context, prompt string, opts port.CompletionOptions) (string, error) {
	m.calls++
	return m.response, m.err
}

func llmConfig() *config.LLMConfig {
	return &config.LLMConfig{Temperature: 0.2, MaxTokens: 1024}
}

func TestGenerate_WellFormedAnalysis(t *testing.T) {
	llm := &MockCompletion{
		response: `{"difficulty": 6, "keyPoints": ["牛顿第二定律", "受力分析"], "commonErrors": ["漏掉摩擦力"]}`,
	}
	g := rubric.NewGenerator(llm, llmConfig())

	r, err := g.Generate(context.Background(), "题目", "参考答案", model.QuestionSubjective)
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	assert.Equal(t, 6, r.Difficulty)
	assert.Equal(t, []string{"牛顿第二定律", "受力分析"}, r.KeyPoints)
	assert.Len(t, r.Dimensions, 4)
	assert.Equal(t, 100.0, r.TotalScore)
}

func TestGenerate_MalformedAnalysisIsRepaired(t *testing.T) {
	// Trailing comma and unquoted key, typical LLM output damage.
	llm := &MockCompletion{
		response: "分析结果如下：\n{difficulty: 5, \"keyPoints\": [\"要点\"], \"commonErrors\": [\"错误\"],}",
	}
	g := rubric.NewGenerator(llm, llmConfig())

	r, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Difficulty)
	assert.Equal(t, []string{"要点"}, r.KeyPoints)
}

func TestGenerate_AnalysisFailureFallsBackToDefault(t *testing.T) {
	llm := &MockCompletion{err: errors.New("connection refused")}
	g := rubric.NewGenerator(llm, llmConfig())

	r, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Equal(t, 0, r.Difficulty)
	assert.Empty(t, r.KeyPoints)
	assert.Len(t, r.Dimensions, 4)
}

func TestGenerate_UnparsableAnalysisFallsBackToDefault(t *testing.T) {
	llm := &MockCompletion{response: "我无法分析这道题目。"}
	g := rubric.NewGenerator(llm, llmConfig())

	r, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Len(t, r.Dimensions, 4)
}

func TestGenerate_HighDifficultyBumpsWeights(t *testing.T) {
	llm := &MockCompletion{
		response: `{"difficulty": 9, "keyPoints": [], "commonErrors": []}`,
	}
	g := rubric.NewGenerator(llm, llmConfig())

	r, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)

	weights := make(map[string]float64)
	maxScores := make(map[string]float64)
	for _, d := range r.Dimensions {
		weights[d.Name] = d.Weight
		maxScores[d.Name] = d.MaxScore
	}
	assert.InDelta(t, 0.15, weights[rubric.DimensionInnovation], 1e-9)
	assert.InDelta(t, 0.33, weights[rubric.DimensionCompleteness], 1e-9)
	// Max scores are untouched by the weight rule.
	assert.Equal(t, 10.0, maxScores[rubric.DimensionInnovation])
	assert.Equal(t, 30.0, maxScores[rubric.DimensionCompleteness])
}

func TestGenerate_CachesByInputTriple(t *testing.T) {
	llm := &MockCompletion{
		response: `{"difficulty": 4, "keyPoints": [], "commonErrors": []}`,
	}
	g := rubric.NewGenerator(llm, llmConfig())

	first, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), "q", "a", model.QuestionSubjective)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, llm.calls)

	// A different question is a different triple.
	_, err = g.Generate(context.Background(), "q2", "a", model.QuestionSubjective)
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
}

func TestDefaultRubric_Objective(t *testing.T) {
	r := rubric.DefaultRubric(model.QuestionObjective)
	require.NoError(t, r.Validate())
	assert.Len(t, r.Dimensions, 1)
	assert.Equal(t, rubric.DimensionCorrectness, r.Dimensions[0].Name)
}
