// Package goquery implements the page element locator over a parsed
// host-page HTML document.
package goquery

import (
	"context"
	"io"
	"os"

	gq "github.com/PuerkitoBio/goquery"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "page"

// Page is one parsed host-page document together with the configured
// viewport geometry.
type Page struct {
	doc            *gq.Document
	viewportWidth  int
	viewportHeight int
}

// NewPage wraps an already parsed document.
func NewPage(doc *gq.Document, cfg *config.PageConfig) *Page {
	width, height := cfg.ViewportWidth, cfg.ViewportHeight
	if width <= 0 {
		width = 1920
	}
	if height <= 0 {
		height = 1080
	}
	return &Page{doc: doc, viewportWidth: width, viewportHeight: height}
}

// NewPageFromReader parses an HTML document from the reader.
func NewPageFromReader(r io.Reader, cfg *config.PageConfig) (*Page, error) {
	doc, err := gq.NewDocumentFromReader(r)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to parse host page HTML", exception.KindUnknown, err)
	}
	return NewPage(doc, cfg), nil
}

// NewPageFromFile parses an HTML document from a file on disk.
func NewPageFromFile(path string, cfg *config.PageConfig) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to open host page file", exception.KindUnknown, err)
	}
	defer f.Close()
	return NewPageFromReader(f, cfg)
}

// Locator finds elements in the parsed host page.
type Locator struct {
	page *Page
}

// NewLocator creates a new Locator over the given page.
func NewLocator(page *Page) *Locator {
	return &Locator{page: page}
}

// FindAll returns every element matching the strategy, in document order.
// An invalid selector matches nothing; goquery compiles it to an empty
// matcher rather than failing.
func (l *Locator) FindAll(ctx context.Context, strategy model.LocatorStrategy) ([]model.PageElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, exception.NewGradingError(moduleName, "page lookup cancelled", exception.KindUnknown, err)
	}

	var elements []model.PageElement
	l.page.doc.Find(strategy.Selector).Each(func(i int, s *gq.Selection) {
		elements = append(elements, &Element{
			selection: s,
			page:      l.page,
			selector:  uniqueSelector(strategy.Selector, i, s),
		})
	})
	logger.Debugf("Locator: selector %q (%s) matched %d element(s)", strategy.Selector, strategy.Kind, len(elements))
	return elements, nil
}

var _ port.PageElementLocator = (*Locator)(nil)
