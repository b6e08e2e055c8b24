package goquery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gq "github.com/PuerkitoBio/goquery"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

var stylePropertyPattern = regexp.MustCompile(`(?i)([a-z-]+)\s*:\s*([^;]+)`)

// Element is one host-page element backed by a parsed document selection.
// Geometry comes from the host page's data-x/data-y/data-width/data-height
// instrumentation attributes or inline style pixel values; a parsed document
// carries no layout of its own.
type Element struct {
	selection *gq.Selection
	page      *Page
	selector  string
}

// Selector returns a selector uniquely addressing this element.
func (e *Element) Selector() string {
	return e.selector
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return e.selection.Attr(name)
}

// SetAttr writes the named attribute back into the document. Score sync
// writes through this.
func (e *Element) SetAttr(name, value string) {
	e.selection.SetAttr(name, value)
}

// Text returns the trimmed text content.
func (e *Element) Text() string {
	return strings.TrimSpace(e.selection.Text())
}

// Visible reports whether the element and all its ancestors are displayed.
func (e *Element) Visible() bool {
	for s := e.selection; s.Length() > 0; s = s.Parent() {
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		if v, ok := s.Attr("aria-hidden"); ok && v == "true" {
			return false
		}
		if style, ok := s.Attr("style"); ok {
			props := parseStyle(style)
			if props["display"] == "none" || props["visibility"] == "hidden" {
				return false
			}
		}
	}
	return true
}

// InViewport reports whether the element's bounds intersect the configured
// viewport. Elements without geometry instrumentation count as in-viewport
// when visible.
func (e *Element) InViewport() bool {
	x, y, width, height, ok := e.geometry()
	if !ok {
		return e.Visible()
	}
	return x < e.page.viewportWidth && y < e.page.viewportHeight && x+width > 0 && y+height > 0
}

// Bounds returns the rendered rectangle of the element in page pixels.
func (e *Element) Bounds() (int, int, int, int) {
	x, y, width, height, ok := e.geometry()
	if !ok {
		return 0, 0, e.page.viewportWidth, e.page.viewportHeight
	}
	return x, y, width, height
}

func (e *Element) geometry() (x, y, width, height int, ok bool) {
	read := func(attr, styleProp string) (int, bool) {
		if v, found := e.selection.Attr(attr); found {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
		if style, found := e.selection.Attr("style"); found {
			if v, present := parseStyle(style)[styleProp]; present {
				if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px")); err == nil {
					return n, true
				}
			}
		}
		return 0, false
	}

	x, okX := read("data-x", "left")
	y, okY := read("data-y", "top")
	width, okW := read("data-width", "width")
	height, okH := read("data-height", "height")
	if !okW || !okH {
		return 0, 0, 0, 0, false
	}
	if !okX {
		x = 0
	}
	if !okY {
		y = 0
	}
	return x, y, width, height, true
}

// parseStyle decomposes an inline style attribute into property/value pairs.
func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, match := range stylePropertyPattern.FindAllStringSubmatch(style, -1) {
		props[strings.ToLower(strings.TrimSpace(match[1]))] = strings.TrimSpace(match[2])
	}
	return props
}

// uniqueSelector derives a stable selector for one matched element: its id
// when present, otherwise the matching strategy selector qualified with the
// match index.
func uniqueSelector(strategySelector string, index int, s *gq.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if index == 0 {
		return strategySelector
	}
	return fmt.Sprintf("%s:nth-match(%d)", strategySelector, index+1)
}

var _ model.PageElement = (*Element)(nil)
