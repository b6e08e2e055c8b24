package goquery_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	page "github.com/gradeloop/gradeloop/pkg/grading/adapter/page/goquery"
	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

const markingPage = `<!DOCTYPE html>
<html>
<body>
  <div class="mark-body">
    <div id="answer-area" data-x="40" data-y="120" data-width="900" data-height="600">
      <img src="answer-1.png"/>
    </div>
    <input data-role="score-input" name="score" style="width: 80px; height: 32px"/>
    <button class="submit-btn">提交</button>
    <div class="student-card hidden-card" style="display: none">
      <span class="student-name">张三</span>
    </div>
    <div data-x="40" data-y="2400" data-width="900" data-height="300" class="next-answer"></div>
  </div>
</body>
</html>`

func pageConfig() *config.PageConfig {
	return &config.PageConfig{ViewportWidth: 1920, ViewportHeight: 1080}
}

func loadPage(t *testing.T) *page.Page {
	t.Helper()
	p, err := page.NewPageFromReader(strings.NewReader(markingPage), pageConfig())
	require.NoError(t, err)
	return p
}

func findOne(t *testing.T, locator *page.Locator, selector string, kind model.LocatorKind) model.PageElement {
	t.Helper()
	elements, err := locator.FindAll(context.Background(), model.LocatorStrategy{Selector: selector, Kind: kind})
	require.NoError(t, err)
	require.Len(t, elements, 1)
	return elements[0]
}

func TestFindAll_MatchesByIdentityAndAttribute(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	answer := findOne(t, locator, "#answer-area", model.LocatorIdentity)
	assert.Equal(t, "#answer-area", answer.Selector())

	score := findOne(t, locator, "[data-role='score-input']", model.LocatorAttribute)
	name, ok := score.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "score", name)
}

func TestFindAll_ReturnsDocumentOrder(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	elements, err := locator.FindAll(context.Background(), model.LocatorStrategy{Selector: "div.mark-body div", Kind: model.LocatorCSS})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(elements), 3)
	assert.Equal(t, "#answer-area", elements[0].Selector())
}

func TestFindAll_NoMatchesAndInvalidSelectorAreEmpty(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	for _, selector := range []string{"#missing-anchor", "div[unterminated"} {
		elements, err := locator.FindAll(context.Background(), model.LocatorStrategy{Selector: selector, Kind: model.LocatorCSS})
		assert.NoError(t, err, selector)
		assert.Empty(t, elements, selector)
	}
}

func TestElement_VisibilityFollowsInlineStyleAndAncestors(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	answer := findOne(t, locator, "#answer-area", model.LocatorIdentity)
	assert.True(t, answer.Visible())

	// The student name itself carries no style; its ancestor is display:none.
	name := findOne(t, locator, ".student-name", model.LocatorClass)
	assert.False(t, name.Visible())
}

func TestElement_BoundsFromInstrumentationAttributes(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	answer := findOne(t, locator, "#answer-area", model.LocatorIdentity)
	x, y, width, height := answer.Bounds()
	assert.Equal(t, 40, x)
	assert.Equal(t, 120, y)
	assert.Equal(t, 900, width)
	assert.Equal(t, 600, height)
	assert.True(t, answer.InViewport())
}

func TestElement_BelowTheFoldIsOutOfViewport(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	next := findOne(t, locator, ".next-answer", model.LocatorClass)
	assert.False(t, next.InViewport())
}

func TestElement_BoundsFromStylePixels(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	score := findOne(t, locator, "[data-role='score-input']", model.LocatorAttribute)
	_, _, width, height := score.Bounds()
	assert.Equal(t, 80, width)
	assert.Equal(t, 32, height)
}

func TestElement_SetAttrWritesThroughToTheDocument(t *testing.T) {
	locator := page.NewLocator(loadPage(t))

	score := findOne(t, locator, "[data-role='score-input']", model.LocatorAttribute)
	score.(*page.Element).SetAttr("value", "42.5")

	again := findOne(t, locator, "[data-role='score-input']", model.LocatorAttribute)
	value, ok := again.Attr("value")
	require.True(t, ok)
	assert.Equal(t, "42.5", value)
}
