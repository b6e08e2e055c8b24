package detect_test

import (
	"context"
	"errors"
	"testing"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/detect"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockElement is a minimal PageElement for detection tests.
type MockElement struct {
	selector   string
	visible    bool
	inViewport bool
}

func (m *MockElement) Selector() string                    { return m.selector }
func (m *MockElement) Attr(name string) (string, bool)     { return "", false }
func (m *MockElement) Text() string                        { return "" }
func (m *MockElement) Visible() bool                       { return m.visible }
func (m *MockElement) InViewport() bool                    { return m.inViewport }
func (m *MockElement) Bounds() (x, y, width, height int)   { return 0, 0, 100, 50 }

func visibleElements(n int) []model.PageElement {
	out := make([]model.PageElement, n)
	for i := range out {
		out[i] = &MockElement{selector: "#e", visible: true, inViewport: true}
	}
	return out
}

// MockLocator returns canned match sets keyed by selector.
type MockLocator struct {
	matches map[string][]model.PageElement
	errs    map[string]error
	calls   []string
}

func (m *MockLocator) FindAll(ctx context.Context, strategy model.LocatorStrategy) ([]model.PageElement, error) {
	m.calls = append(m.calls, strategy.Selector)
	if err, ok := m.errs[strategy.Selector]; ok {
		return nil, err
	}
	return m.matches[strategy.Selector], nil
}

func TestConfidence_Bounds(t *testing.T) {
	cases := []struct {
		name    string
		matches []model.PageElement
		kind    model.LocatorKind
		want    float64
	}{
		{"single identity match all visible", visibleElements(1), model.LocatorIdentity, 1.0},
		{"single attribute match all visible", visibleElements(1), model.LocatorAttribute, 0.95},
		{"single class match all visible", visibleElements(1), model.LocatorClass, 0.9},
		{"single dynamic-class match all visible", visibleElements(1), model.LocatorDynamicClass, 0.8},
		{"single css match all visible", visibleElements(1), model.LocatorCSS, 0.8},
		{"three css matches all visible", visibleElements(3), model.LocatorCSS, 0.7},
		{"six css matches all visible", visibleElements(6), model.LocatorCSS, 0.6},
		{"no matches", nil, model.LocatorIdentity, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := detect.Confidence(tc.matches, tc.kind)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestConfidence_HiddenElementDropsVisibilityBonus(t *testing.T) {
	matches := []model.PageElement{
		&MockElement{visible: true, inViewport: true},
		&MockElement{visible: false, inViewport: true},
	}
	// 0.5 base + 0.1 (2-5 matches) + 0.15 attribute, no visibility bonus.
	assert.InDelta(t, 0.75, detect.Confidence(matches, model.LocatorAttribute), 1e-9)
}

func TestDetect_FirstMatchingStrategyWins(t *testing.T) {
	locator := &MockLocator{
		matches: map[string][]model.PageElement{
			"[data-role='answer']": visibleElements(1),
			".answer":              visibleElements(3),
		},
	}
	detector := detect.NewDetectorWithStrategies(locator, map[model.AnchorType][]model.LocatorStrategy{
		model.AnchorAnswerArea: {
			{Selector: "#answer", Kind: model.LocatorIdentity},
			{Selector: "[data-role='answer']", Kind: model.LocatorAttribute},
			{Selector: ".answer", Kind: model.LocatorClass},
		},
	})

	detected, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.NoError(t, err)

	element, ok := detected[model.AnchorAnswerArea]
	require.True(t, ok)
	assert.Equal(t, "[data-role='answer']", element.LocatorUsed)
	assert.Equal(t, model.LocatorAttribute, element.LocatorKind)
	assert.Equal(t, 1, element.MatchCount)
	// The winning strategy stops the walk: .answer must not be queried.
	assert.NotContains(t, locator.calls, ".answer")
}

func TestDetect_RequiredAnchorMissingFails(t *testing.T) {
	locator := &MockLocator{matches: map[string][]model.PageElement{}}
	detector := detect.NewDetectorWithStrategies(locator, map[model.AnchorType][]model.LocatorStrategy{
		model.AnchorAnswerArea: {{Selector: "#answer", Kind: model.LocatorIdentity}},
		model.AnchorScoreInput: {{Selector: "#score", Kind: model.LocatorIdentity}},
	})

	_, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.Error(t, err)
	assert.Equal(t, exception.KindElementDetection, exception.KindOf(err))
	assert.Contains(t, err.Error(), "answer-area")
}

func TestDetect_OptionalAnchorMissingDoesNotFail(t *testing.T) {
	locator := &MockLocator{
		matches: map[string][]model.PageElement{
			"#answer": visibleElements(1),
		},
	}
	detector := detect.NewDetectorWithStrategies(locator, map[model.AnchorType][]model.LocatorStrategy{
		model.AnchorAnswerArea:  {{Selector: "#answer", Kind: model.LocatorIdentity}},
		model.AnchorStudentInfo: {{Selector: ".student", Kind: model.LocatorClass}},
	})

	detected, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.NoError(t, err)
	assert.Contains(t, detected, model.AnchorAnswerArea)
	assert.NotContains(t, detected, model.AnchorStudentInfo)
}

func TestDetect_FailingStrategyFallsThrough(t *testing.T) {
	locator := &MockLocator{
		matches: map[string][]model.PageElement{
			".answer": visibleElements(1),
		},
		errs: map[string]error{
			"#answer": errors.New("selector evaluation failed"),
		},
	}
	detector := detect.NewDetectorWithStrategies(locator, map[model.AnchorType][]model.LocatorStrategy{
		model.AnchorAnswerArea: {
			{Selector: "#answer", Kind: model.LocatorIdentity},
			{Selector: ".answer", Kind: model.LocatorClass},
		},
	})

	detected, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.NoError(t, err)
	assert.Equal(t, ".answer", detected[model.AnchorAnswerArea].LocatorUsed)
}

func TestDetect_IdempotentOnUnchangedPage(t *testing.T) {
	locator := &MockLocator{
		matches: map[string][]model.PageElement{
			"#answer": visibleElements(2),
		},
	}
	detector := detect.NewDetectorWithStrategies(locator, map[model.AnchorType][]model.LocatorStrategy{
		model.AnchorAnswerArea: {{Selector: "#answer", Kind: model.LocatorIdentity}},
	})

	first, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.NoError(t, err)
	second, err := detector.Detect(context.Background(), []model.AnchorType{model.AnchorAnswerArea})
	require.NoError(t, err)

	assert.Equal(t, first[model.AnchorAnswerArea].Confidence, second[model.AnchorAnswerArea].Confidence)
	assert.Equal(t, first[model.AnchorAnswerArea].LocatorUsed, second[model.AnchorAnswerArea].LocatorUsed)
}
