package summon

import "sync"

// RecomposerState tracks where a composition sits in its scheduling cycle.
type RecomposerState int

const (
	// StateIdle means no recomposition is pending or running.
	StateIdle RecomposerState = iota
	// StateScheduled means a recomposition is registered with the scheduler
	// but has not started.
	StateScheduled
	// StateComposing means a composition pass is executing right now.
	StateComposing
)

// Recomposer is the scheduling authority for one composition tree. It owns
// the tree's Composer, re-runs the composition root when state changes, and
// coalesces any number of invalidations between scheduler ticks into exactly
// one recomposition pass.
type Recomposer struct {
	mu        sync.Mutex
	composer  *Composer
	root      func(*Composer)
	scheduler Scheduler
	state     RecomposerState
	cancel    func()
	disposed  bool
}

// NewRecomposer creates a recomposer for the given composition root.
func NewRecomposer(root func(*Composer), scheduler Scheduler) *Recomposer {
	rec := &Recomposer{
		root:      root,
		scheduler: scheduler,
	}
	rec.composer = newComposer(rec)
	return rec
}

// State returns the current scheduling state.
func (rec *Recomposer) State() RecomposerState {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.state
}

// Composer returns the composer owned by this recomposition tree.
func (rec *Recomposer) Composer() *Composer {
	return rec.composer
}

// Compose runs the initial composition pass synchronously.
func (rec *Recomposer) Compose() {
	rec.runPass()
}

// ScheduleRecomposition registers one recomposition with the scheduler. If
// one is already pending this is a no-op, which guarantees that N state
// writes between ticks produce exactly one recomposition.
func (rec *Recomposer) ScheduleRecomposition() {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.disposed || rec.state != StateIdle {
		return
	}
	rec.state = StateScheduled
	rec.cancel = rec.scheduler.Schedule(rec.Recompose)
}

// Recompose clears the pending flag and re-invokes the composition root
// through the same Composer instance, so slot positions line up with the
// prior pass and unchanged subtrees are reused.
func (rec *Recomposer) Recompose() {
	rec.mu.Lock()
	if rec.disposed {
		rec.mu.Unlock()
		return
	}
	rec.state = StateIdle
	rec.cancel = nil
	rec.mu.Unlock()

	rec.runPass()
}

// invalidate is called by state cells on write. A write landing while the
// pass is executing is already visible to that pass, so only writes arriving
// outside composition schedule work.
func (rec *Recomposer) invalidate() {
	rec.mu.Lock()
	composing := rec.state == StateComposing
	rec.mu.Unlock()

	if composing {
		return
	}
	rec.ScheduleRecomposition()
}

// Dispose cancels any pending recomposition and detaches the tree. A pass
// already executing is not preempted; future invalidations are ignored.
func (rec *Recomposer) Dispose() {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.disposed = true
	if rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}
	rec.state = StateIdle
}

func (rec *Recomposer) runPass() {
	rec.mu.Lock()
	if rec.disposed {
		rec.mu.Unlock()
		return
	}
	rec.state = StateComposing
	rec.mu.Unlock()

	c := rec.composer
	prev := activeComposer()
	setActiveComposer(c)
	c.beginPass()

	defer func() {
		c.composing = false
		setActiveComposer(prev)
		rec.mu.Lock()
		rec.state = StateIdle
		rec.mu.Unlock()
	}()

	rec.root(c)
	c.endPass()
}

// Compose creates a recomposer for root, runs the initial pass, and returns
// the recomposer for subsequent scheduling. This is the server entry point:
// one call per render request, each on its own goroutine.
func Compose(root func(*Composer), scheduler Scheduler) *Recomposer {
	rec := NewRecomposer(root, scheduler)
	rec.Compose()
	return rec
}
