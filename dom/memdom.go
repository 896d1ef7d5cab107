package dom

import "sync"

// MemDocument is the in-memory Document: the server-side and test double
// for a browser page. Events dispatched through it bubble from the target
// element up to the root, invoking registered listeners along the way.
type MemDocument struct {
	mu          sync.Mutex
	root        *MemElement
	order       []*MemElement
	navigations []string
}

// NewMemDocument creates a document with an empty root element.
func NewMemDocument() *MemDocument {
	d := &MemDocument{}
	d.root = &MemElement{tag: "body", doc: d}
	d.order = append(d.order, d.root)
	return d
}

// Root returns the root element.
func (d *MemDocument) Root() Element {
	return d.root
}

// ElementByID looks an element up by id.
func (d *MemDocument) ElementByID(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, el := range d.order {
		if el.id == id {
			return el, true
		}
	}
	return nil, false
}

// ElementByAttr returns the first element carrying the attribute, in
// document order.
func (d *MemDocument) ElementByAttr(name, value string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, el := range d.order {
		if v, ok := el.attrs[name]; ok && v == value {
			return el, true
		}
	}
	return nil, false
}

// Navigate records the navigation target.
func (d *MemDocument) Navigate(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigations = append(d.navigations, url)
}

// Navigations returns every Navigate call in order.
func (d *MemDocument) Navigations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigations...)
}

// CreateElement creates an element attached under parent (the root when
// parent is nil).
func (d *MemDocument) CreateElement(tag, id string, parent *MemElement) *MemElement {
	if parent == nil {
		parent = d.root
	}

	el := &MemElement{tag: tag, id: id, doc: d, parent: parent}
	parent.children = append(parent.children, el)

	d.mu.Lock()
	d.order = append(d.order, el)
	d.mu.Unlock()
	return el
}

// DispatchEvent creates an event of eventType at target and bubbles it to
// the root.
func (d *MemDocument) DispatchEvent(eventType string, target *MemElement) *MemEvent {
	evt := &MemEvent{eventType: eventType, target: target}
	for el := target; el != nil; el = el.parent {
		for _, l := range el.listeners[eventType] {
			l(evt)
		}
	}
	return evt
}

// MemElement implements Element over plain maps.
type MemElement struct {
	doc      *MemDocument
	parent   *MemElement
	children []*MemElement

	tag            string
	id             string
	text           string
	attrs          map[string]string
	inlineDisplay  string
	defaultDisplay string
	bounds         Rect
	listeners      map[string][]func(Event)
}

func (e *MemElement) ID() string  { return e.id }
func (e *MemElement) Tag() string { return e.tag }

func (e *MemElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *MemElement) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
}

func (e *MemElement) RemoveAttr(name string) {
	delete(e.attrs, name)
}

func (e *MemElement) Text() string        { return e.text }
func (e *MemElement) SetText(text string) { e.text = text }

func (e *MemElement) InlineDisplay() string { return e.inlineDisplay }

func (e *MemElement) SetInlineDisplay(display string) { e.inlineDisplay = display }

// DefaultDisplay falls back to per-tag browser defaults when not set
// explicitly via SetDefaultDisplay.
func (e *MemElement) DefaultDisplay() string {
	if e.defaultDisplay != "" {
		return e.defaultDisplay
	}
	switch e.tag {
	case "span", "a", "em", "strong":
		return "inline"
	case "button", "img":
		return "inline-block"
	default:
		return "block"
	}
}

// SetDefaultDisplay overrides the computed default display mode, standing
// in for stylesheet-applied display values.
func (e *MemElement) SetDefaultDisplay(display string) { e.defaultDisplay = display }

func (e *MemElement) Bounds() Rect { return e.bounds }

// SetBounds positions the element for viewport classification.
func (e *MemElement) SetBounds(r Rect) { e.bounds = r }

func (e *MemElement) Parent() Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *MemElement) AddEventListener(eventType string, handler func(Event)) {
	if e.listeners == nil {
		e.listeners = make(map[string][]func(Event))
	}
	e.listeners[eventType] = append(e.listeners[eventType], handler)
}

// MemEvent implements Event.
type MemEvent struct {
	eventType string
	target    *MemElement
	prevented bool
}

func (e *MemEvent) Type() string           { return e.eventType }
func (e *MemEvent) Target() Element        { return e.target }
func (e *MemEvent) PreventDefault()        { e.prevented = true }
func (e *MemEvent) DefaultPrevented() bool { return e.prevented }
