package summon

// Attribute names shared between the server renderer and the client
// pipeline. Everything the hydration and dispatch layers need to know about
// an element travels through these.
const (
	// AttrHydrationRoot marks the composition root; its value is "root".
	AttrHydrationRoot = "data-summon-hydration"

	// AttrID carries the stable server-assigned element id used to match
	// hydration work and buffered events to elements.
	AttrID = "data-summon-id"

	// AttrPriority hints hydration urgency: critical|visible|near|deferred.
	AttrPriority = "data-summon-priority"

	// AttrAction carries a JSON action descriptor. Elements with this
	// attribute are always-live: the dispatcher handles them regardless of
	// hydration state.
	AttrAction = "data-summon-action"

	// AttrCallback carries a signed callback binding referencing a
	// CallbackRegistry id.
	AttrCallback = "data-summon-callback"

	// AttrDisplayRecovery stores an element's pre-toggle display mode so a
	// later toggle restores the exact original layout mode.
	AttrDisplayRecovery = "data-summon-display"

	// HydrationRootValue is the value of AttrHydrationRoot on the root.
	HydrationRootValue = "root"
)
