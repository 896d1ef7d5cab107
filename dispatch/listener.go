package dispatch

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/summonui/summon"
	"github.com/summonui/summon/dom"
)

// listenerMarker on the root records that delegated handlers are already
// installed, keeping Install idempotent.
const listenerMarker = "data-summon-listener"

// interactionEvents are the bubbling event types the delegated listener
// handles.
var interactionEvents = []string{"click"}

// GlobalListener is the single delegated listener attached near the
// document root. On any bubbling interaction it walks from the event target
// upward looking for the nearest element carrying an action descriptor and
// dispatches it immediately - before, during, or after hydration.
//
// Elements carrying only a stable server id are not yet interactive; their
// events are default-prevented and buffered until MarkHydrated replays
// them.
type GlobalListener struct {
	mu        sync.Mutex
	doc       dom.Document
	disp      *Dispatcher
	buffered  map[string][]dom.Event
	hydrated  mapset.Set[string]
	hydrating bool
	logger    *slog.Logger

	// OnReplay receives each buffered event when its element is marked
	// hydrated; the element's own handlers are live by then.
	OnReplay func(id string, evt dom.Event)
}

// ListenerOption configures a GlobalListener.
type ListenerOption func(*GlobalListener)

// WithListenerLogger overrides the listener's logger.
func WithListenerLogger(l *slog.Logger) ListenerOption {
	return func(g *GlobalListener) { g.logger = l }
}

// NewGlobalListener creates a listener for doc routing actions through
// disp.
func NewGlobalListener(doc dom.Document, disp *Dispatcher, opts ...ListenerOption) *GlobalListener {
	g := &GlobalListener{
		doc:      doc,
		disp:     disp,
		buffered: make(map[string][]dom.Event),
		hydrated: mapset.NewSet[string](),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Install attaches delegated handlers at the document root. Installing
// twice is a no-op: a single user interaction never double-dispatches.
func (g *GlobalListener) Install() {
	root := g.doc.Root()
	if _, ok := root.Attr(listenerMarker); ok {
		return
	}
	root.SetAttr(listenerMarker, "true")

	for _, eventType := range interactionEvents {
		root.AddEventListener(eventType, g.HandleEvent)
	}
}

// Bootstrap installs the delegated handlers and replays events that were
// queued before the client runtime loaded, so interactions during page
// load are not lost.
func (g *GlobalListener) Bootstrap(pending []dom.Event) {
	g.Install()
	for _, evt := range pending {
		g.HandleEvent(evt)
	}
}

// SetHydrating flips the global hydration-in-progress flag. The flag never
// gates elements carrying a direct action descriptor.
func (g *GlobalListener) SetHydrating(active bool) {
	g.mu.Lock()
	g.hydrating = active
	g.mu.Unlock()
}

// HandleEvent routes one bubbling interaction event.
func (g *GlobalListener) HandleEvent(evt dom.Event) {
	for el := evt.Target(); el != nil; el = el.Parent() {
		if actionJSON, ok := el.Attr(summon.AttrAction); ok {
			// Always-live path: dispatch unconditionally, regardless of the
			// hydration flag. A malformed descriptor is dropped but the
			// event stays handled to avoid an ambiguous default action.
			evt.PreventDefault()
			if err := g.disp.Dispatch(actionJSON); err != nil {
				g.logger.Warn("action dispatch failed", "err", err)
			}
			return
		}

		if id, ok := el.Attr(summon.AttrID); ok {
			if g.hydrated.Contains(id) {
				// The element's own hydrated handlers own this event.
				return
			}
			evt.PreventDefault()
			g.mu.Lock()
			g.buffered[id] = append(g.buffered[id], evt)
			g.mu.Unlock()
			return
		}
	}
}

// MarkHydrated records that id's handlers are live and replays the events
// buffered for it, in arrival order.
func (g *GlobalListener) MarkHydrated(id string) {
	g.hydrated.Add(id)

	g.mu.Lock()
	events := g.buffered[id]
	delete(g.buffered, id)
	g.mu.Unlock()

	for _, evt := range events {
		if g.OnReplay != nil {
			g.OnReplay(id, evt)
		}
	}
}

// BufferedCount reports how many events are waiting for id.
func (g *GlobalListener) BufferedCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.buffered[id])
}

// Hydrating reports the global hydration-in-progress flag.
func (g *GlobalListener) Hydrating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hydrating
}
