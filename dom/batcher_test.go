package dom

import (
	"reflect"
	"testing"

	"github.com/summonui/summon"
)

func TestBatcherReadsBeforeWrites(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	var order []string
	b.Read(func() { order = append(order, "r1") })
	b.Write(func() { order = append(order, "w1") })
	b.Read(func() { order = append(order, "r2") })
	b.Write(func() { order = append(order, "w2") })

	if len(order) != 0 {
		t.Fatalf("ops ran before tick: %v", order)
	}
	sched.Tick()

	want := []string{"r1", "r2", "w1", "w2"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("flush order = %v, want %v", order, want)
	}
}

func TestBatcherSchedulesOnce(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	b.Read(func() {})
	b.Write(func() {})
	b.Read(func() {})

	if sched.Pending() != 1 {
		t.Errorf("scheduled flushes = %d, want 1", sched.Pending())
	}
}

func TestBatcherMidFlushEnqueueDeferred(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	var order []string
	b.Write(func() {
		order = append(order, "w1")
		// Enqueued during the flush: must run in the next flush, and
		// still read-before-write within it.
		b.Write(func() { order = append(order, "w2") })
		b.Read(func() { order = append(order, "r2") })
	})

	sched.Tick()
	if !reflect.DeepEqual(order, []string{"w1"}) {
		t.Fatalf("first tick ran %v", order)
	}
	if sched.Pending() != 1 {
		t.Fatalf("mid-flush enqueue did not reschedule, pending = %d", sched.Pending())
	}

	sched.Tick()
	want := []string{"w1", "r2", "w2"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestBatcherPanicIsolation(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	var ran []string
	b.Read(func() { panic("measure failed") })
	b.Read(func() { ran = append(ran, "r2") })
	b.Write(func() { panic("mutate failed") })
	b.Write(func() { ran = append(ran, "w2") })

	sched.Tick()

	want := []string{"r2", "w2"}
	if !reflect.DeepEqual(ran, want) {
		t.Errorf("surviving ops = %v, want %v", ran, want)
	}
}

func TestBatcherClear(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	ran := false
	b.Write(func() { ran = true })
	b.Clear()

	sched.Tick()
	if ran {
		t.Error("cleared op still ran")
	}
	if b.PendingReads() != 0 || b.PendingWrites() != 0 {
		t.Errorf("pending after clear: %d reads, %d writes",
			b.PendingReads(), b.PendingWrites())
	}

	// Clearing must not wedge the batcher.
	b.Write(func() { ran = true })
	sched.Tick()
	if !ran {
		t.Error("batcher did not recover after Clear")
	}
}

func TestBatcherDirectFlush(t *testing.T) {
	sched := summon.NewManualScheduler()
	b := NewBatcher(sched)

	ran := false
	b.Write(func() { ran = true })
	b.Flush()

	if !ran {
		t.Error("direct Flush did not run queued op")
	}
	// The scheduled flush still fires but finds nothing.
	sched.Tick()
}
