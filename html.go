package summon

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/summonui/summon/lib/encoding"
)

// HTMLRenderer is the server-side Renderer. It emits static HTML annotated
// with hydration metadata: a root marker, stable element ids, priority
// hints, action descriptors, and signed callback bindings resolving to
// CallbackRegistry entries.
//
// One renderer serves one render pass:
//
//	h := summon.NewHTMLRenderer(reg, summon.WithBindingEncoder(enc))
//	h.Begin()
//	summon.Compose(func(c *summon.Composer) { app(c, h) }, sched)
//	page, ids := h.Finish()
type HTMLRenderer struct {
	registry *CallbackRegistry
	encoder  *encoding.Encoder
	issued   func() int64

	sb   strings.Builder
	seq  int
	open bool
}

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*HTMLRenderer)

// WithBindingEncoder makes the renderer embed signed callback bindings
// instead of raw registry ids.
func WithBindingEncoder(enc *encoding.Encoder) HTMLOption {
	return func(h *HTMLRenderer) { h.encoder = enc }
}

// NewHTMLRenderer creates a renderer that registers interaction callbacks
// with reg.
func NewHTMLRenderer(reg *CallbackRegistry, opts ...HTMLOption) *HTMLRenderer {
	h := &HTMLRenderer{registry: reg}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Begin opens the render pass: a fresh registry epoch and the hydration
// root element.
func (h *HTMLRenderer) Begin() {
	h.registry.BeginRender()
	h.sb.Reset()
	h.seq = 0
	h.open = true
	fmt.Fprintf(&h.sb, `<div %s=%q>`, AttrHydrationRoot, HydrationRootValue)
}

// Finish closes the root, collects the epoch's callback ids, and returns
// the HTML.
func (h *HTMLRenderer) Finish() (string, []string) {
	if h.open {
		h.sb.WriteString(`</div>`)
		h.open = false
	}
	return h.sb.String(), h.registry.FinishRenderAndCollectCallbackIDs()
}

// Abandon discards the pass without collecting ids; already-registered
// callbacks stay executable.
func (h *HTMLRenderer) Abandon() {
	h.registry.AbandonRenderContext()
	h.sb.Reset()
	h.open = false
}

// Component wraps the rendered HTML as a templ component for embedding in a
// page template. Call after Finish.
func (h *HTMLRenderer) Component() templ.Component {
	out := h.sb.String()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	})
}

// RenderText emits a span with the escaped content.
func (h *HTMLRenderer) RenderText(content string, mod Modifier) {
	h.openTag("span", mod, false)
	h.sb.WriteString(html.EscapeString(content))
	h.sb.WriteString(`</span>`)
}

// RenderButton registers onClick in the callback registry and emits a
// button carrying the callback binding. Buttons always receive a stable id
// so pre-hydration clicks can be buffered and replayed against them.
func (h *HTMLRenderer) RenderButton(label string, onClick func(), mod Modifier) {
	if mod.GetID() == "" {
		mod = mod.ID(h.nextID())
	}

	id := h.registry.RegisterCallback(onClick)
	mod = mod.Attr(AttrCallback, h.bindingAttr(id))

	h.openTag("button", mod, false)
	h.sb.WriteString(html.EscapeString(label))
	h.sb.WriteString(`</button>`)
}

// RenderImage emits an img element.
func (h *HTMLRenderer) RenderImage(src, alt string, mod Modifier) {
	h.openTag("img", mod.Attr("src", src).Attr("alt", alt), true)
}

// RenderRow emits a horizontal flex container around content.
func (h *HTMLRenderer) RenderRow(mod Modifier, content func()) {
	h.openTag("div", mod.Style("display", "flex").Style("flex-direction", "row"), false)
	content()
	h.sb.WriteString(`</div>`)
}

// RenderColumn emits a vertical flex container around content.
func (h *HTMLRenderer) RenderColumn(mod Modifier, content func()) {
	h.openTag("div", mod.Style("display", "flex").Style("flex-direction", "column"), false)
	content()
	h.sb.WriteString(`</div>`)
}

// RenderBox emits a plain block container around content.
func (h *HTMLRenderer) RenderBox(mod Modifier, content func()) {
	h.openTag("div", mod, false)
	content()
	h.sb.WriteString(`</div>`)
}

func (h *HTMLRenderer) nextID() string {
	h.seq++
	return fmt.Sprintf("summon-el-%d", h.seq)
}

// bindingAttr encodes a callback id for embedding. With no encoder the raw
// id is embedded (useful in tests); production setups sign it.
func (h *HTMLRenderer) bindingAttr(id string) string {
	if h.encoder == nil {
		return id
	}
	var issued int64
	if h.issued != nil {
		issued = h.issued()
	}
	encoded, err := h.encoder.Encode(encoding.Binding{ID: id, Issued: issued}, false)
	if err != nil {
		// Signing only fails on a broken key, which NewEncoder catches;
		// fall back to the raw id rather than drop interactivity.
		return id
	}
	return encoded
}

// openTag writes an opening tag with the modifier's id, styles, attributes,
// priority hint, and action descriptor. selfClose emits "/>" void-element
// style.
func (h *HTMLRenderer) openTag(tag string, mod Modifier, selfClose bool) {
	h.sb.WriteByte('<')
	h.sb.WriteString(tag)

	if id := mod.GetID(); id != "" {
		writeAttr(&h.sb, "id", id)
		writeAttr(&h.sb, AttrID, id)
	}
	if p := mod.GetPriority(); p != "" {
		writeAttr(&h.sb, AttrPriority, p)
	}
	if a := mod.GetAction(); a != nil {
		writeAttr(&h.sb, AttrAction, a.Encode())
	}
	if styles := mod.GetStyles(); len(styles) > 0 {
		var sv strings.Builder
		for i, s := range styles {
			if i > 0 {
				sv.WriteByte(';')
			}
			sv.WriteString(s.Name)
			sv.WriteByte(':')
			sv.WriteString(s.Value)
		}
		writeAttr(&h.sb, "style", sv.String())
	}
	for _, a := range mod.GetAttrs() {
		writeAttr(&h.sb, a.Name, a.Value)
	}

	if selfClose {
		h.sb.WriteString(`/>`)
	} else {
		h.sb.WriteByte('>')
	}
}

func writeAttr(sb *strings.Builder, name, value string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(html.EscapeString(value))
	sb.WriteByte('"')
}
