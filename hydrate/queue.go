package hydrate

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/summonui/summon"
	"github.com/summonui/summon/dom"
)

// Task is one unit of hydration work. Its DOM access goes through the
// batcher it receives so reads and writes coalesce per frame.
type Task func(b *dom.Batcher)

// WorkScheduler receives drained hydration work.
type WorkScheduler interface {
	Submit(id string, work Task)
}

// DefaultNearThresholdPx is how close to the viewport edge an element must
// be to classify as near-visible.
const DefaultNearThresholdPx = 200

// Queue buckets pending hydration work by priority and tracks observed
// elements against the viewport. Promotion is monotonic: entries move
// toward Visible as they approach the viewport and are never demoted.
type Queue struct {
	mu       sync.Mutex
	doc      dom.Document
	buckets  map[Priority][]*pendingHydration
	byID     map[string]*pendingHydration
	observed mapset.Set[string]

	nearThreshold float64
	logger        *slog.Logger

	// OnElementVisible fires when an observed element scrolls into view,
	// after its entry is promoted.
	OnElementVisible func(id string)
}

type pendingHydration struct {
	id       string
	priority Priority
	work     Task
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithNearThreshold overrides the near-visible distance in pixels.
func WithNearThreshold(px float64) QueueOption {
	return func(q *Queue) { q.nearThreshold = px }
}

// WithQueueLogger overrides the queue's logger.
func WithQueueLogger(l *slog.Logger) QueueOption {
	return func(q *Queue) { q.logger = l }
}

// NewQueue creates a queue classifying elements of doc.
func NewQueue(doc dom.Document, opts ...QueueOption) *Queue {
	q := &Queue{
		doc:           doc,
		buckets:       make(map[Priority][]*pendingHydration),
		byID:          make(map[string]*pendingHydration),
		observed:      mapset.NewSet[string](),
		nearThreshold: DefaultNearThresholdPx,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// DetectElementPriority classifies the element: an explicit priority
// attribute wins; otherwise geometry against vp decides. Unknown elements
// classify as deferred.
func (q *Queue) DetectElementPriority(id string, vp dom.Viewport) Priority {
	el, ok := q.doc.ElementByID(id)
	if !ok {
		q.logger.Debug("priority detection for missing element", "id", id)
		return PriorityDeferred
	}

	if hint, ok := el.Attr(summon.AttrPriority); ok {
		if p, ok := ParsePriority(hint); ok {
			return p
		}
		q.logger.Warn("unknown priority hint", "id", id, "hint", hint)
	}

	bounds := el.Bounds()
	if vp.Intersects(bounds) {
		return PriorityVisible
	}
	if vp.DistanceTo(bounds) <= q.nearThreshold {
		return PriorityNear
	}
	return PriorityDeferred
}

// Enqueue stores work under the given priority. Re-enqueueing an id
// replaces its work and keeps the higher of the two priorities.
func (q *Queue) Enqueue(id string, priority Priority, work Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, ok := q.byID[id]; ok {
		existing.work = work
		if priority > existing.priority {
			q.moveLocked(existing, priority)
		}
		return
	}

	p := &pendingHydration{id: id, priority: priority, work: work}
	q.byID[id] = p
	q.buckets[priority] = append(q.buckets[priority], p)
}

// PromoteToVisible moves an entry into the Visible bucket, but only when
// its current priority is strictly lower - Critical and Visible entries are
// never demoted.
func (q *Queue) PromoteToVisible(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	p, ok := q.byID[id]
	if !ok || p.priority >= PriorityVisible {
		return
	}
	q.moveLocked(p, PriorityVisible)
}

// ObserveElement registers id for viewport re-checks on scroll.
func (q *Queue) ObserveElement(id string) {
	q.observed.Add(id)
}

// OnScroll re-checks every observed element against vp. Elements that have
// become visible are promoted and reported through OnElementVisible, then
// dropped from observation.
func (q *Queue) OnScroll(vp dom.Viewport) {
	for _, id := range q.observed.ToSlice() {
		el, ok := q.doc.ElementByID(id)
		if !ok {
			continue
		}
		if !vp.Intersects(el.Bounds()) {
			continue
		}

		q.PromoteToVisible(id)
		q.observed.Remove(id)
		if q.OnElementVisible != nil {
			q.OnElementVisible(id)
		}
	}
}

// Len reports how many entries are queued across all buckets.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byID)
}

// DrainToScheduler dequeues and submits every entry in strict priority
// order - Critical, Visible, Near, Deferred - then clears all bookkeeping.
func (q *Queue) DrainToScheduler(s WorkScheduler) {
	q.mu.Lock()
	buckets := q.buckets
	q.buckets = make(map[Priority][]*pendingHydration)
	q.byID = make(map[string]*pendingHydration)
	q.observed.Clear()
	q.mu.Unlock()

	for _, pri := range drainOrder {
		for _, p := range buckets[pri] {
			s.Submit(p.id, p.work)
		}
	}
}

// moveLocked rebuckets p under priority. Caller holds q.mu.
func (q *Queue) moveLocked(p *pendingHydration, priority Priority) {
	old := q.buckets[p.priority]
	for i, cand := range old {
		if cand == p {
			q.buckets[p.priority] = append(old[:i], old[i+1:]...)
			break
		}
	}
	p.priority = priority
	q.buckets[priority] = append(q.buckets[priority], p)
}
