// Package dispatch interprets serialized action descriptors on the client
// and owns the delegated event listener that routes interactions to them.
//
// Elements carrying a descriptor are always-live: the dispatcher applies
// their effects immediately, whether or not hydration has finished.
// Elements identified only by a stable server id buffer their events until
// the hydrate scheduler marks them ready.
package dispatch

import (
	"log/slog"
	"strings"

	"github.com/summonui/summon"
	"github.com/summonui/summon/dom"
)

// Dispatcher parses action descriptors and applies their DOM effects.
type Dispatcher struct {
	doc    dom.Document
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger overrides the dispatcher's logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher mutating doc.
func NewDispatcher(doc dom.Document, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{doc: doc, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses actionJSON and applies the effect. Malformed descriptors
// and missing targets are logged and dropped; the returned error reports
// them to callers that care, but nothing panics.
func (d *Dispatcher) Dispatch(actionJSON string) error {
	action, err := summon.ParseAction([]byte(actionJSON))
	if err != nil {
		d.logger.Warn("dropping malformed action", "err", err)
		return err
	}

	switch action.Type {
	case summon.ActionToggle:
		d.applyToggle(action.TargetID)
	case summon.ActionNavigate:
		d.doc.Navigate(action.URL)
	}
	return nil
}

// applyToggle flips the target's visibility. Before the first hide, the
// element's current non-none display mode is captured into a recovery
// attribute so showing it again restores the exact original layout mode
// (flex, grid, inline-flex, ...) instead of a hardcoded default.
func (d *Dispatcher) applyToggle(targetID string) {
	el, ok := d.doc.ElementByID(targetID)
	if !ok {
		d.logger.Warn("toggle target not found", "id", targetID)
		return
	}

	if currentDisplay(el) == "none" {
		restored := "block"
		if saved, ok := el.Attr(summon.AttrDisplayRecovery); ok && saved != "" {
			restored = saved
		} else if def := el.DefaultDisplay(); def != "" && def != "none" {
			restored = def
		}
		el.SetInlineDisplay(restored)
		d.syncTrigger(targetID, true)
		return
	}

	if _, ok := el.Attr(summon.AttrDisplayRecovery); !ok {
		if mode := currentDisplay(el); mode != "none" && mode != "" {
			el.SetAttr(summon.AttrDisplayRecovery, mode)
		}
	}
	el.SetInlineDisplay("none")
	d.syncTrigger(targetID, false)
}

// currentDisplay resolves the effective display mode: inline style when
// set, computed default otherwise.
func currentDisplay(el dom.Element) string {
	if inline := el.InlineDisplay(); inline != "" {
		return inline
	}
	return el.DefaultDisplay()
}

// syncTrigger keeps the associated trigger's aria-expanded state and icon
// conventions in step with the toggle. The trigger is found through
// aria-controls pointing at the target.
func (d *Dispatcher) syncTrigger(targetID string, expanded bool) {
	trigger, ok := d.doc.ElementByAttr("aria-controls", targetID)
	if !ok {
		return
	}

	if expanded {
		trigger.SetAttr("aria-expanded", "true")
	} else {
		trigger.SetAttr("aria-expanded", "false")
	}
	syncTriggerIcon(trigger, expanded)
}

// Known trigger-icon conventions, updated atomically with the toggle.
const (
	hamburgerGlyph = "☰"
	closeGlyph     = "✕"
	discloseOpen   = "+"
	discloseClose  = "−"
)

func syncTriggerIcon(trigger dom.Element, expanded bool) {
	switch strings.TrimSpace(trigger.Text()) {
	case hamburgerGlyph, closeGlyph:
		if expanded {
			trigger.SetText(closeGlyph)
		} else {
			trigger.SetText(hamburgerGlyph)
		}
	case discloseOpen, discloseClose:
		if expanded {
			trigger.SetText(discloseClose)
		} else {
			trigger.SetText(discloseOpen)
		}
	}

	if label, ok := trigger.Attr("aria-label"); ok {
		trigger.SetAttr("aria-label", swapOpenClose(label, expanded))
	}
}

// swapOpenClose rewrites "Open menu" style labels to their counterpart.
func swapOpenClose(label string, expanded bool) string {
	lower := strings.ToLower(label)
	switch {
	case expanded && strings.Contains(lower, "open"):
		return replaceFold(label, "open", "Close")
	case !expanded && strings.Contains(lower, "close"):
		return replaceFold(label, "close", "Open")
	}
	return label
}

// replaceFold replaces the first case-insensitive occurrence of old.
func replaceFold(s, old, repl string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + repl + s[idx+len(old):]
}
