package summon

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/petermattis/goid"
)

// CallbackRegistry maps stable callback ids to closures across the
// server/client boundary. A render pass registers closures and embeds their
// ids into HTML; a later HTTP request (or a hydrated client) resolves the id
// back to the closure and invokes it.
//
// The registry is intentionally shared across requests. Epochs exist only to
// let a render pass collect the ids it produced - closing or abandoning an
// epoch never evicts closures. Eviction is explicit (Clear) or, optionally,
// TTL-based (WithTTL), because HTML referencing an id may be served long
// before the id is invoked.
type CallbackRegistry struct {
	mu      sync.Mutex
	entries map[string]*callbackEntry
	// epochs is keyed by goroutine id: multiple requests may render
	// concurrently, and each must collect only its own ids.
	epochs  map[int64]*renderEpoch
	counter uint64
	salt    uint64
	ttl     time.Duration
	now     func() time.Time
}

type callbackEntry struct {
	fn      func()
	epoch   uint64
	created time.Time
}

type renderEpoch struct {
	n   uint64
	seq uint64
	ids []string
}

// RegistryOption configures a CallbackRegistry.
type RegistryOption func(*CallbackRegistry)

// WithTTL enables eviction of entries older than d. Zero (the default)
// keeps entries until an explicit Clear.
func WithTTL(d time.Duration) RegistryOption {
	return func(r *CallbackRegistry) { r.ttl = d }
}

// NewCallbackRegistry creates an empty registry.
func NewCallbackRegistry(opts ...RegistryOption) *CallbackRegistry {
	r := &CallbackRegistry{
		entries: make(map[string]*callbackEntry),
		epochs:  make(map[int64]*renderEpoch),
		salt:    uint64(time.Now().UnixNano()),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BeginRender opens a new collection epoch for the calling goroutine.
// Safe to call with a previous epoch still open: the stale epoch is
// discarded (its closures remain registered).
func (r *CallbackRegistry) BeginRender() {
	gid := goid.Get()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	r.epochs[gid] = &renderEpoch{n: r.counter}
	r.sweepLocked()
}

// RegisterCallback stores fn under a stable id and records the id as
// belonging to the calling goroutine's current epoch. If no epoch is open
// one is opened implicitly.
func (r *CallbackRegistry) RegisterCallback(fn func()) string {
	gid := goid.Get()

	r.mu.Lock()
	defer r.mu.Unlock()

	ep := r.epochs[gid]
	if ep == nil {
		r.counter++
		ep = &renderEpoch{n: r.counter}
		r.epochs[gid] = ep
	}

	ep.seq++
	id := r.callbackID(ep.n, ep.seq)
	r.entries[id] = &callbackEntry{fn: fn, epoch: ep.n, created: r.now()}
	ep.ids = append(ep.ids, id)
	return id
}

// FinishRenderAndCollectCallbackIDs returns every id registered since the
// matching BeginRender and closes the epoch. The closures themselves stay
// registered and executable.
func (r *CallbackRegistry) FinishRenderAndCollectCallbackIDs() []string {
	gid := goid.Get()

	r.mu.Lock()
	defer r.mu.Unlock()

	ep := r.epochs[gid]
	if ep == nil {
		return nil
	}
	delete(r.epochs, gid)
	return ep.ids
}

// AbandonRenderContext closes the calling goroutine's epoch without
// collecting - used when a render pass is discarded. Already-registered
// closures remain valid.
func (r *CallbackRegistry) AbandonRenderContext() {
	gid := goid.Get()

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.epochs, gid)
}

// ExecuteCallback invokes the closure registered under id. Returns false,
// without panicking, when the id is unknown or expired.
func (r *CallbackRegistry) ExecuteCallback(id string) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && r.expiredLocked(entry) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.fn()
	return true
}

// Clear evicts every registered closure. This is the only unconditional
// eviction path.
func (r *CallbackRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*callbackEntry)
}

// Len reports how many closures are currently registered.
func (r *CallbackRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *CallbackRegistry) callbackID(epoch, seq uint64) string {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], r.salt)
	binary.LittleEndian.PutUint64(buf[8:], epoch)
	binary.LittleEndian.PutUint64(buf[16:], seq)
	return fmt.Sprintf("cb-%016x", xxhash.Sum64(buf[:]))
}

func (r *CallbackRegistry) expiredLocked(e *callbackEntry) bool {
	return r.ttl > 0 && r.now().Sub(e.created) > r.ttl
}

// sweepLocked lazily drops expired entries. Called on BeginRender so a
// long-lived server reclaims memory without a background goroutine.
func (r *CallbackRegistry) sweepLocked() {
	if r.ttl == 0 {
		return
	}
	for id, e := range r.entries {
		if r.expiredLocked(e) {
			delete(r.entries, id)
		}
	}
}
