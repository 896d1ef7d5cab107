// Package summon provides the composition runtime for building
// server-rendered, hydratable web applications in Go.
//
// Composable functions describe UI declaratively; the runtime executes them
// through a Composer, memoizes values positionally in a slot table, and
// re-executes only the scopes whose inputs changed when state mutates. On the
// server a composition runs once per request and emits HTML annotated with
// hydration metadata; on the client the dispatch and hydrate packages attach
// interactivity back onto that HTML.
//
// # Core Concepts
//
// State cells are created inside a composition with RememberState. Reading a
// cell while a composer is active registers a dependency; writing a cell
// schedules a recomposition through the owning Recomposer:
//
//	rec := summon.Compose(func(c *summon.Composer) {
//	    count := summon.RememberState(c, func() int { return 0 })
//	    r.RenderText(fmt.Sprintf("Count: %d", count.Get()), summon.NewModifier())
//	    r.RenderButton("Increment", func() { count.Set(count.Get() + 1) }, summon.NewModifier())
//	}, scheduler)
//
// Recomposition is coalesced: any number of state writes between scheduler
// ticks produce exactly one recomposition pass.
//
// # Callbacks Across the Boundary
//
// Server-rendered HTML cannot embed closures, so interactive elements carry
// stable callback ids instead. The CallbackRegistry collects closures during
// a render pass and keeps them resolvable until an explicit Clear, so a later
// HTTP request (or a hydrated client) can invoke them by id:
//
//	reg.BeginRender()
//	id := reg.RegisterCallback(func() { count.Set(count.Get() + 1) })
//	ids := reg.FinishRenderAndCollectCallbackIDs()
//	// ... later, from the callback endpoint:
//	reg.ExecuteCallback(id) // true
//
// Closing or abandoning a render epoch never evicts closures - eviction is
// explicit (Clear) or TTL-based (WithTTL).
//
// # Hydration Metadata
//
// The HTMLRenderer annotates output with data-summon-* attributes: a root
// marker, per-element priority hints (critical|visible|near|deferred),
// signed callback bindings, and JSON action descriptors. The hydrate package
// classifies and drains hydration work by priority; the dispatch package
// installs a single delegated listener that interprets action descriptors -
// immediately for elements that carry one, buffered until hydration for
// elements that do not.
//
// # Design Rationale
//
// The runtime favors explicitness over ambient magic:
//   - Explicit composition scopes (a *Composer handle, not compiler rewriting)
//   - Explicit scheduling (a Scheduler interface, not hidden timers)
//   - Explicit per-request isolation (no process-wide current composer)
//   - Explicit eviction (callback ids survive epoch rotation until Clear or TTL)
//
// Runtime anomalies (missing elements, unknown ids, malformed descriptors)
// degrade gracefully and log; violations of the composition contract panic
// at the call site.
package summon
