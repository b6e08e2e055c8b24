// Package scoresync writes accepted scores back into the host page.
package scoresync

import (
	"context"
	"strconv"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "scoresync"

// attrWriter is the write capability a page element must expose for DOM
// write-back. The goquery adapter's Element implements it.
type attrWriter interface {
	SetAttr(name, value string)
}

// PageScoreWriter writes the score into the score-input element and marks
// the submit control activated.
type PageScoreWriter struct{}

// NewPageScoreWriter creates a new PageScoreWriter.
func NewPageScoreWriter() *PageScoreWriter {
	return &PageScoreWriter{}
}

// Write sets the score on the given score-input element.
func (w *PageScoreWriter) Write(ctx context.Context, element model.PageElement, score float64) error {
	if err := ctx.Err(); err != nil {
		return exception.NewGradingError(moduleName, "score write cancelled", exception.KindUnknown, err)
	}
	if element == nil {
		return exception.NewGradingError(moduleName, "score-input element is missing", exception.KindElementDetection, nil)
	}
	writer, ok := element.(attrWriter)
	if !ok {
		return exception.NewGradingError(moduleName, "score-input element does not support write-back", exception.KindUnknown, nil)
	}

	value := strconv.FormatFloat(score, 'f', -1, 64)
	writer.SetAttr("value", value)
	logger.Debugf("PageScoreWriter: wrote score %s to %s", value, element.Selector())
	return nil
}

// Submit activates the page's submit control.
func (w *PageScoreWriter) Submit(ctx context.Context, element model.PageElement) error {
	if err := ctx.Err(); err != nil {
		return exception.NewGradingError(moduleName, "submit cancelled", exception.KindUnknown, err)
	}
	if element == nil {
		return exception.NewGradingError(moduleName, "submit element is missing", exception.KindElementDetection, nil)
	}
	writer, ok := element.(attrWriter)
	if !ok {
		return exception.NewGradingError(moduleName, "submit element does not support activation", exception.KindUnknown, nil)
	}

	writer.SetAttr("data-submitted", "true")
	logger.Debugf("PageScoreWriter: activated submit control %s", element.Selector())
	return nil
}

var _ port.ScoreWriter = (*PageScoreWriter)(nil)
