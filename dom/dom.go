// Package dom defines the typed DOM abstraction the client runtime mutates
// through, plus an in-memory implementation used on the server and in tests.
//
// Every DOM effect the runtime performs has a method here; no raw script or
// string-interop path exists. A browser build binds these interfaces to the
// real document; MemDocument stands in everywhere else.
package dom

// Rect is element geometry in viewport-relative pixels.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Bottom returns the rect's bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Viewport is the visible window region used for hydration classification.
type Viewport struct {
	Top    float64
	Height float64
}

// Bottom returns the viewport's bottom edge.
func (v Viewport) Bottom() float64 {
	return v.Top + v.Height
}

// Intersects reports whether rect overlaps the viewport vertically.
func (v Viewport) Intersects(r Rect) bool {
	return r.Bottom() > v.Top && r.Top < v.Bottom()
}

// DistanceTo returns how many pixels separate rect from the viewport edge;
// zero when intersecting.
func (v Viewport) DistanceTo(r Rect) float64 {
	if v.Intersects(r) {
		return 0
	}
	if r.Top >= v.Bottom() {
		return r.Top - v.Bottom()
	}
	return v.Top - r.Bottom()
}

// Document is the page-level surface.
type Document interface {
	// Root returns the document's root element.
	Root() Element

	// ElementByID looks an element up by its id attribute.
	ElementByID(id string) (Element, bool)

	// ElementByAttr returns the first element carrying attribute name with
	// the given value, in document order.
	ElementByAttr(name, value string) (Element, bool)

	// Navigate performs client navigation to url.
	Navigate(url string)
}

// Element is one node in the document.
type Element interface {
	ID() string
	Tag() string

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	// Text is the element's direct text content; the dispatcher rewrites it
	// for trigger-icon glyphs.
	Text() string
	SetText(text string)

	// InlineDisplay returns the inline style display value, "" when unset.
	InlineDisplay() string
	SetInlineDisplay(display string)

	// DefaultDisplay returns the computed display mode that applies when no
	// inline value is set (e.g. "block" for div, "inline" for span).
	DefaultDisplay() string

	// Bounds returns viewport-relative geometry.
	Bounds() Rect

	// Parent returns nil at the root.
	Parent() Element

	// AddEventListener registers a bubbling-phase handler.
	AddEventListener(eventType string, handler func(Event))
}

// Event is a bubbling interaction event.
type Event interface {
	Type() string
	Target() Element
	PreventDefault()
	DefaultPrevented() bool
}
