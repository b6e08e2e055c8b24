package model

// AnchorType identifies a host-page element the grading pipeline depends on.
type AnchorType string

const (
	AnchorAnswerArea   AnchorType = "answer-area"
	AnchorScoreInput   AnchorType = "score-input"
	AnchorSubmitButton AnchorType = "submit-button"
	AnchorStudentInfo  AnchorType = "student-info"
	AnchorQuestionInfo AnchorType = "question-info"
)

// String returns the string representation of the AnchorType.
func (t AnchorType) String() string {
	return string(t)
}

// LocatorKind categorizes how a locator strategy addresses the page.
// The kind feeds the detection confidence model: identity and attribute
// locators are more stable than class-based or generic CSS ones.
type LocatorKind string

const (
	// LocatorIdentity addresses an element by its unique id.
	LocatorIdentity LocatorKind = "identity"
	// LocatorAttribute addresses elements by a stable data/name attribute.
	LocatorAttribute LocatorKind = "attribute"
	// LocatorClass addresses elements by a hand-written class name.
	LocatorClass LocatorKind = "class"
	// LocatorDynamicClass addresses elements by a generated (hashed) class
	// name, which may change between host-page deployments.
	LocatorDynamicClass LocatorKind = "dynamic-class"
	// LocatorCSS is a generic CSS selector with no stability assumption.
	LocatorCSS LocatorKind = "css"
)

// LocatorStrategy is a single way of locating one anchor type on the page.
type LocatorStrategy struct {
	Selector string
	Kind     LocatorKind
}

// PageElement is one live element on the host page, as seen through a
// page locator adapter. Implementations keep a handle back into the page so
// score sync can write through it.
type PageElement interface {
	// Selector returns a selector uniquely addressing this element.
	Selector() string
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Text returns the rendered text content.
	Text() string
	// Visible reports whether the element is currently displayed.
	Visible() bool
	// InViewport reports whether the element's bounds fall inside the viewport.
	InViewport() bool
	// Bounds returns the rendered rectangle of the element in page pixels.
	Bounds() (x, y, width, height int)
}

// DetectedElement is one anchor found on the host page.
type DetectedElement struct {
	AnchorType  AnchorType
	LocatorUsed string
	LocatorKind LocatorKind
	MatchCount  int
	// Confidence is a deterministic heuristic in [0,1] that the located
	// anchor is the correct one, derived from match count, locator kind and
	// visibility.
	Confidence float64
	// Elements are the matched page elements; Elements[0] is the anchor used
	// by downstream steps.
	Elements []PageElement
}

// Primary returns the first matched element, or nil when nothing matched.
func (d DetectedElement) Primary() PageElement {
	if len(d.Elements) == 0 {
		return nil
	}
	return d.Elements[0]
}
