package dom

import (
	"log/slog"
	"sync"

	"github.com/summonui/summon"
)

// Batcher queues DOM reads and writes into separate FIFO queues and flushes
// them on a single scheduled tick, all reads before any write. Interleaving
// layout-triggering reads with style mutations forces a synchronous layout
// per interleaving; separating them amortizes the cost to at most one forced
// layout per flush.
//
// Operations enqueued while a flush is executing are deferred to a newly
// scheduled flush, never run inline - this bounds flush recursion and keeps
// the read-before-write guarantee for the new batch.
type Batcher struct {
	mu      sync.Mutex
	reads   []func()
	writes  []func()
	pending bool
	cancel  func()

	scheduler summon.Scheduler
	logger    *slog.Logger
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithBatcherLogger overrides the batcher's logger.
func WithBatcherLogger(l *slog.Logger) BatcherOption {
	return func(b *Batcher) { b.logger = l }
}

// NewBatcher creates a batcher flushing on scheduler ticks (animation
// frames in a browser).
func NewBatcher(scheduler summon.Scheduler, opts ...BatcherOption) *Batcher {
	b := &Batcher{
		scheduler: scheduler,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Read queues a measuring operation and schedules a flush if none is
// pending.
func (b *Batcher) Read(op func()) {
	b.mu.Lock()
	b.reads = append(b.reads, op)
	b.scheduleLocked()
	b.mu.Unlock()
}

// Write queues a mutating operation and schedules a flush if none is
// pending.
func (b *Batcher) Write(op func()) {
	b.mu.Lock()
	b.writes = append(b.writes, op)
	b.scheduleLocked()
	b.mu.Unlock()
}

// Flush executes the whole read queue in FIFO order, then the whole write
// queue. A failing operation is logged and the rest of the batch continues.
// Usually invoked by the scheduler; calling it directly flushes whatever is
// queued right now.
func (b *Batcher) Flush() {
	b.mu.Lock()
	b.pending = false
	b.cancel = nil
	reads := b.reads
	writes := b.writes
	b.reads = nil
	b.writes = nil
	b.mu.Unlock()

	for _, op := range reads {
		b.runOp("read", op)
	}
	for _, op := range writes {
		b.runOp("write", op)
	}
}

// Clear cancels any scheduled flush and drops queued operations. Used
// during teardown.
func (b *Batcher) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.pending = false
	b.reads = nil
	b.writes = nil
}

// PendingReads reports queued read count.
func (b *Batcher) PendingReads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reads)
}

// PendingWrites reports queued write count.
func (b *Batcher) PendingWrites() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

// scheduleLocked registers exactly one flush with the scheduler. During an
// active flush pending is already false, so ops enqueued mid-flush schedule
// the next one; the scheduler contract defers it past the current tick.
func (b *Batcher) scheduleLocked() {
	if b.pending {
		return
	}
	b.pending = true
	b.cancel = b.scheduler.Schedule(b.Flush)
}

func (b *Batcher) runOp(phase string, op func()) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("dom operation failed", "phase", phase, "panic", rec)
		}
	}()
	op()
}
