package summon

import (
	"sync"

	"github.com/petermattis/goid"
)

// activeComposers maps goroutine id -> *Composer. Server-side, each request
// composes on its own goroutine, so keying by goid keeps concurrent requests
// from ever observing each other's composer. There is deliberately no
// process-wide "current composer".
var activeComposers sync.Map

func activeComposer() *Composer {
	gid := goid.Get()
	if c, ok := activeComposers.Load(gid); ok {
		return c.(*Composer)
	}
	return nil
}

func setActiveComposer(c *Composer) {
	gid := goid.Get()
	if c == nil {
		activeComposers.Delete(gid)
		return
	}
	activeComposers.Store(gid, c)
}

// requireActiveComposer returns the composer bound to the current goroutine
// or panics. Composition-only APIs (Remember, Changed via package helpers)
// call this to fail fast on contract violations instead of silently
// no-opping.
func requireActiveComposer(op string) *Composer {
	c := activeComposer()
	if c == nil {
		panic("summon: " + op + " called with no active composer; composition-only APIs must run inside Compose or a recomposition pass")
	}
	return c
}
