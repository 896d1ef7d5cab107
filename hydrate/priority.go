// Package hydrate schedules the attachment of client interactivity onto
// server-rendered HTML. Work is classified by urgency - explicit hints on
// the element or viewport geometry - queued per priority, and drained to a
// frame-budgeted scheduler in strict priority order.
package hydrate

// Priority buckets pending hydration work by urgency. Higher values are
// more urgent; dispatch order is Critical, Visible, Near, Deferred.
type Priority int

const (
	// PriorityDeferred is work far from the viewport.
	PriorityDeferred Priority = iota
	// PriorityNear is work within the near threshold of the viewport edge.
	PriorityNear
	// PriorityVisible is work intersecting the viewport now.
	PriorityVisible
	// PriorityCritical is work that must hydrate before anything else,
	// regardless of geometry.
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityCritical: "critical",
	PriorityVisible:  "visible",
	PriorityNear:     "near",
	PriorityDeferred: "deferred",
}

// String returns the attribute form of the priority.
func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "deferred"
}

// ParsePriority maps an attribute value to a Priority.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "critical":
		return PriorityCritical, true
	case "visible":
		return PriorityVisible, true
	case "near":
		return PriorityNear, true
	case "deferred":
		return PriorityDeferred, true
	}
	return PriorityDeferred, false
}

// drainOrder is the fixed dispatch order for DrainToScheduler.
var drainOrder = []Priority{PriorityCritical, PriorityVisible, PriorityNear, PriorityDeferred}
