package summon

// Modifier carries the styling and attribute metadata a composable passes to
// the renderer. It is a fluent value builder in the spirit of:
//
//	r.RenderText("Hello", summon.NewModifier().ID("greeting").Style("color", "red"))
//
// The core treats modifiers as opaque ordered bags; interpreting them is the
// renderer's job.
type Modifier struct {
	id       string
	styles   []StyleDecl
	attrs    []AttrDecl
	priority string
	action   *Action
}

// StyleDecl is one inline style declaration.
type StyleDecl struct {
	Name  string
	Value string
}

// AttrDecl is one HTML attribute.
type AttrDecl struct {
	Name  string
	Value string
}

// NewModifier creates an empty modifier.
func NewModifier() Modifier {
	return Modifier{}
}

// ID sets the element's stable id, used for hydration matching and as the
// toggle target reference.
func (m Modifier) ID(id string) Modifier {
	m.id = id
	return m
}

// Style appends an inline style declaration.
func (m Modifier) Style(name, value string) Modifier {
	m.styles = append(m.styles, StyleDecl{Name: name, Value: value})
	return m
}

// Attr appends an HTML attribute.
func (m Modifier) Attr(name, value string) Modifier {
	m.attrs = append(m.attrs, AttrDecl{Name: name, Value: value})
	return m
}

// Priority sets the hydration priority hint; one of
// "critical", "visible", "near", "deferred".
func (m Modifier) Priority(p string) Modifier {
	m.priority = p
	return m
}

// WithAction attaches a serialized action descriptor, making the element
// always-live for the client dispatcher.
func (m Modifier) WithAction(a Action) Modifier {
	m.action = &a
	return m
}

// GetID returns the element id ("" when unset).
func (m Modifier) GetID() string { return m.id }

// GetStyles returns the inline style declarations in append order.
func (m Modifier) GetStyles() []StyleDecl { return m.styles }

// GetAttrs returns the attributes in append order.
func (m Modifier) GetAttrs() []AttrDecl { return m.attrs }

// GetPriority returns the hydration priority hint ("" when unset).
func (m Modifier) GetPriority() string { return m.priority }

// GetAction returns the attached action descriptor, or nil.
func (m Modifier) GetAction() *Action { return m.action }

// Renderer is the platform drawing interface the composition calls into.
// The core never knows whether an implementation emits HTML strings, mutates
// a live DOM, or records calls for a test.
//
// Container operations take a content closure; the renderer emits the
// container boundary, invokes content for the children, then closes it.
type Renderer interface {
	RenderText(content string, mod Modifier)
	RenderButton(label string, onClick func(), mod Modifier)
	RenderImage(src, alt string, mod Modifier)
	RenderRow(mod Modifier, content func())
	RenderColumn(mod Modifier, content func())
	RenderBox(mod Modifier, content func())
}
