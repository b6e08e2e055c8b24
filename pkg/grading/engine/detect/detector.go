// Package detect implements anchor detection over the host page.
// For each anchor type it walks an ordered list of locator strategies; the
// first strategy producing at least one match wins, and the match set is
// scored with a deterministic confidence heuristic.
package detect

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const componentName = "detect"

// anchorOrder fixes the iteration order over anchor types so detection output
// and logging are deterministic run to run.
var anchorOrder = []model.AnchorType{
	model.AnchorAnswerArea,
	model.AnchorScoreInput,
	model.AnchorSubmitButton,
	model.AnchorStudentInfo,
	model.AnchorQuestionInfo,
}

// DefaultStrategies is the built-in locator table, ordered most-stable first
// per anchor type. Callers with knowledge of a specific host page should
// supply their own table through NewDetectorWithStrategies.
var DefaultStrategies = map[model.AnchorType][]model.LocatorStrategy{
	model.AnchorAnswerArea: {
		{Selector: "#answer-area", Kind: model.LocatorIdentity},
		{Selector: "[data-role='answer-area']", Kind: model.LocatorAttribute},
		{Selector: ".answer-area", Kind: model.LocatorClass},
		{Selector: "div.mark-body img, div.mark-body canvas", Kind: model.LocatorCSS},
	},
	model.AnchorScoreInput: {
		{Selector: "#score-input", Kind: model.LocatorIdentity},
		{Selector: "input[name='score']", Kind: model.LocatorAttribute},
		{Selector: ".score-input", Kind: model.LocatorClass},
		{Selector: "div.mark-score input[type='text'], div.mark-score input[type='number']", Kind: model.LocatorCSS},
	},
	model.AnchorSubmitButton: {
		{Selector: "#submit-score", Kind: model.LocatorIdentity},
		{Selector: "button[data-action='submit']", Kind: model.LocatorAttribute},
		{Selector: ".submit-btn", Kind: model.LocatorClass},
		{Selector: "div.mark-action button", Kind: model.LocatorCSS},
	},
	model.AnchorStudentInfo: {
		{Selector: "[data-role='student-info']", Kind: model.LocatorAttribute},
		{Selector: ".student-info", Kind: model.LocatorClass},
	},
	model.AnchorQuestionInfo: {
		{Selector: "[data-role='question-info']", Kind: model.LocatorAttribute},
		{Selector: ".question-info", Kind: model.LocatorClass},
	},
}

// Detector is the default ElementDetector implementation. It is stateless per
// call; re-detection after DOM mutations is the caller's responsibility.
type Detector struct {
	locator    port.PageElementLocator
	strategies map[model.AnchorType][]model.LocatorStrategy
}

// NewDetector creates a Detector using the built-in locator table.
func NewDetector(locator port.PageElementLocator) *Detector {
	return NewDetectorWithStrategies(locator, DefaultStrategies)
}

// NewDetectorWithStrategies creates a Detector with a caller-supplied locator table.
func NewDetectorWithStrategies(locator port.PageElementLocator, strategies map[model.AnchorType][]model.LocatorStrategy) *Detector {
	return &Detector{
		locator:    locator,
		strategies: strategies,
	}
}

// Detect scans the page for every anchor type in the locator table.
// It returns an error only when an anchor type listed in required yields zero
// matches across all of its strategies; optional anchors that are absent are
// simply omitted from the result map.
func (d *Detector) Detect(ctx context.Context, required []model.AnchorType) (map[model.AnchorType]model.DetectedElement, error) {
	requiredSet := make(map[model.AnchorType]bool, len(required))
	for _, t := range required {
		requiredSet[t] = true
	}

	detected := make(map[model.AnchorType]model.DetectedElement)
	var missing *multierror.Error

	for _, anchorType := range anchorOrder {
		strategies, ok := d.strategies[anchorType]
		if !ok {
			continue
		}

		element, found := d.detectOne(ctx, anchorType, strategies)
		if found {
			detected[anchorType] = element
			continue
		}

		if requiredSet[anchorType] {
			missing = multierror.Append(missing, fmt.Errorf("required anchor '%s' not found", anchorType))
		} else {
			logger.Debugf("Optional anchor '%s' not found, skipping.", anchorType)
		}
	}

	if err := missing.ErrorOrNil(); err != nil {
		return detected, exception.NewGradingError(componentName, "required page anchors could not be located", exception.KindElementDetection, err)
	}
	return detected, nil
}

// detectOne tries the ordered strategies for one anchor type. The first
// strategy yielding at least one match wins; later strategies are not tried.
func (d *Detector) detectOne(ctx context.Context, anchorType model.AnchorType, strategies []model.LocatorStrategy) (model.DetectedElement, bool) {
	for _, strategy := range strategies {
		matches, err := d.locator.FindAll(ctx, strategy)
		if err != nil {
			// A failing selector counts as zero matches for this strategy.
			logger.Debugf("Locator strategy '%s' for anchor '%s' failed: %v", strategy.Selector, anchorType, err)
			continue
		}
		if len(matches) == 0 {
			continue
		}

		element := model.DetectedElement{
			AnchorType:  anchorType,
			LocatorUsed: strategy.Selector,
			LocatorKind: strategy.Kind,
			MatchCount:  len(matches),
			Confidence:  Confidence(matches, strategy.Kind),
			Elements:    matches,
		}
		logger.Debugf("Anchor '%s' detected via '%s' (%d matches, confidence %.2f).",
			anchorType, strategy.Selector, element.MatchCount, element.Confidence)
		return element, true
	}
	return model.DetectedElement{}, false
}

// Confidence computes the deterministic detection confidence for a match set.
// It starts from a 0.5 base and adds bonuses for match-count precision,
// locator stability and full visibility, clamped to 1.0.
func Confidence(matches []model.PageElement, kind model.LocatorKind) float64 {
	if len(matches) == 0 {
		return 0
	}

	c := 0.5

	switch n := len(matches); {
	case n == 1:
		c += 0.2
	case n >= 2 && n <= 5:
		c += 0.1
	}

	switch kind {
	case model.LocatorIdentity:
		c += 0.2
	case model.LocatorAttribute:
		c += 0.15
	case model.LocatorClass:
		c += 0.1
	}

	allVisible := true
	for _, m := range matches {
		if !m.Visible() || !m.InViewport() {
			allVisible = false
			break
		}
	}
	if allVisible {
		c += 0.1
	}

	if c > 1.0 {
		c = 1.0
	}
	return c
}

var _ port.ElementDetector = (*Detector)(nil)
