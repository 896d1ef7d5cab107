package hydrate

import (
	"reflect"
	"testing"

	"github.com/summonui/summon"
	"github.com/summonui/summon/dom"
)

// recordingScheduler collects drained ids in submission order.
type recordingScheduler struct {
	ids []string
}

func (r *recordingScheduler) Submit(id string, work Task) {
	r.ids = append(r.ids, id)
}

func placeElement(doc *dom.MemDocument, id string, top float64) *dom.MemElement {
	el := doc.CreateElement("div", id, nil)
	el.SetBounds(dom.Rect{Top: top, Height: 50})
	return el
}

func TestDetectElementPriority(t *testing.T) {
	doc := dom.NewMemDocument()
	vp := dom.Viewport{Top: 0, Height: 600}

	placeElement(doc, "onscreen", 100)
	placeElement(doc, "below-near", 700)
	placeElement(doc, "below-far", 2000)
	hinted := placeElement(doc, "hinted", 2000)
	hinted.SetAttr(summon.AttrPriority, "critical")
	badHint := placeElement(doc, "bad-hint", 100)
	badHint.SetAttr(summon.AttrPriority, "urgent")

	q := NewQueue(doc)

	cases := []struct {
		id   string
		want Priority
	}{
		{"onscreen", PriorityVisible},
		{"below-near", PriorityNear},
		{"below-far", PriorityDeferred},
		// An explicit hint beats geometry entirely.
		{"hinted", PriorityCritical},
		// An unparseable hint falls back to geometry.
		{"bad-hint", PriorityVisible},
		{"missing", PriorityDeferred},
	}
	for _, tc := range cases {
		if got := q.DetectElementPriority(tc.id, vp); got != tc.want {
			t.Errorf("DetectElementPriority(%s) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestDetectElementPriorityCustomThreshold(t *testing.T) {
	doc := dom.NewMemDocument()
	placeElement(doc, "el", 1000)
	vp := dom.Viewport{Top: 0, Height: 600}

	if got := NewQueue(doc).DetectElementPriority("el", vp); got != PriorityDeferred {
		t.Errorf("default threshold = %v, want deferred", got)
	}
	q := NewQueue(doc, WithNearThreshold(500))
	if got := q.DetectElementPriority("el", vp); got != PriorityNear {
		t.Errorf("widened threshold = %v, want near", got)
	}
}

func TestDrainOrder(t *testing.T) {
	doc := dom.NewMemDocument()
	q := NewQueue(doc)

	q.Enqueue("d", PriorityDeferred, func(*dom.Batcher) {})
	q.Enqueue("c", PriorityCritical, func(*dom.Batcher) {})
	q.Enqueue("n", PriorityNear, func(*dom.Batcher) {})
	q.Enqueue("v", PriorityVisible, func(*dom.Batcher) {})
	q.Enqueue("c2", PriorityCritical, func(*dom.Batcher) {})

	rec := &recordingScheduler{}
	q.DrainToScheduler(rec)

	want := []string{"c", "c2", "v", "n", "d"}
	if !reflect.DeepEqual(rec.ids, want) {
		t.Errorf("drain order = %v, want %v", rec.ids, want)
	}
	if q.Len() != 0 {
		t.Errorf("queue not cleared, len = %d", q.Len())
	}
}

func TestPromotionBeforeDrain(t *testing.T) {
	doc := dom.NewMemDocument()
	q := NewQueue(doc)

	q.Enqueue("v", PriorityVisible, func(*dom.Batcher) {})
	q.Enqueue("late", PriorityDeferred, func(*dom.Batcher) {})

	// The element scrolled into view before the drain: it dispatches in the
	// visible phase, after earlier visible entries.
	q.PromoteToVisible("late")

	rec := &recordingScheduler{}
	q.DrainToScheduler(rec)

	want := []string{"v", "late"}
	if !reflect.DeepEqual(rec.ids, want) {
		t.Errorf("drain order = %v, want %v", rec.ids, want)
	}
}

func TestPromotionIsMonotonic(t *testing.T) {
	doc := dom.NewMemDocument()
	q := NewQueue(doc)

	q.Enqueue("c", PriorityCritical, func(*dom.Batcher) {})
	q.Enqueue("v", PriorityVisible, func(*dom.Batcher) {})
	q.PromoteToVisible("c")
	q.PromoteToVisible("v")
	q.PromoteToVisible("absent")

	rec := &recordingScheduler{}
	q.DrainToScheduler(rec)

	// Critical stays ahead of visible: promotion never demotes.
	want := []string{"c", "v"}
	if !reflect.DeepEqual(rec.ids, want) {
		t.Errorf("drain order = %v, want %v", rec.ids, want)
	}
}

func TestReEnqueueKeepsHigherPriority(t *testing.T) {
	doc := dom.NewMemDocument()
	q := NewQueue(doc)

	var ran []string
	q.Enqueue("el", PriorityVisible, func(*dom.Batcher) { ran = append(ran, "old") })
	q.Enqueue("el", PriorityDeferred, func(*dom.Batcher) { ran = append(ran, "new") })
	q.Enqueue("other", PriorityNear, func(*dom.Batcher) {})

	if q.Len() != 2 {
		t.Fatalf("len = %d, want 2", q.Len())
	}

	rec := &recordingScheduler{}
	q.DrainToScheduler(rec)

	// Still in the visible bucket, ahead of the near entry.
	if !reflect.DeepEqual(rec.ids, []string{"el", "other"}) {
		t.Errorf("drain order = %v", rec.ids)
	}
}

func TestReEnqueueReplacesWork(t *testing.T) {
	doc := dom.NewMemDocument()
	q := NewQueue(doc)

	var ran []string
	q.Enqueue("el", PriorityDeferred, func(*dom.Batcher) { ran = append(ran, "old") })
	q.Enqueue("el", PriorityVisible, func(*dom.Batcher) { ran = append(ran, "new") })

	sched := summon.NewManualScheduler()
	s := NewScheduler(sched, dom.NewBatcher(sched))
	q.DrainToScheduler(s)
	sched.Tick()

	if !reflect.DeepEqual(ran, []string{"new"}) {
		t.Errorf("ran = %v, want [new]", ran)
	}
}

func TestOnScrollPromotesObserved(t *testing.T) {
	doc := dom.NewMemDocument()
	placeElement(doc, "el", 2000)
	q := NewQueue(doc)

	q.Enqueue("el", PriorityDeferred, func(*dom.Batcher) {})
	q.ObserveElement("el")

	var visible []string
	q.OnElementVisible = func(id string) { visible = append(visible, id) }

	// Still offscreen: nothing fires.
	q.OnScroll(dom.Viewport{Top: 0, Height: 600})
	if len(visible) != 0 {
		t.Fatalf("premature visibility: %v", visible)
	}

	// Scrolled down far enough that the element intersects.
	q.OnScroll(dom.Viewport{Top: 1800, Height: 600})
	if !reflect.DeepEqual(visible, []string{"el"}) {
		t.Fatalf("OnElementVisible calls = %v", visible)
	}

	// Observation is one-shot.
	q.OnScroll(dom.Viewport{Top: 1800, Height: 600})
	if len(visible) != 1 {
		t.Errorf("repeat scroll re-fired: %v", visible)
	}

	rec := &recordingScheduler{}
	q.Enqueue("v", PriorityVisible, func(*dom.Batcher) {})
	q.DrainToScheduler(rec)
	if !reflect.DeepEqual(rec.ids, []string{"el", "v"}) {
		t.Errorf("promoted entry missing from visible phase: %v", rec.ids)
	}
}

func TestPriorityStrings(t *testing.T) {
	for _, p := range []Priority{PriorityCritical, PriorityVisible, PriorityNear, PriorityDeferred} {
		parsed, ok := ParsePriority(p.String())
		if !ok || parsed != p {
			t.Errorf("ParsePriority(%q) = %v, %v", p.String(), parsed, ok)
		}
	}
	if _, ok := ParsePriority("asap"); ok {
		t.Error("parsed unknown priority")
	}
}
