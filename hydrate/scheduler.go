package hydrate

import (
	"log/slog"
	"sync"

	"github.com/summonui/summon"
	"github.com/summonui/summon/dom"
)

// DefaultFrameBudget caps how many hydration tasks run per execution slot.
const DefaultFrameBudget = 4

// Scheduler drains submitted hydration work into frame-budgeted execution
// slots. Each task's DOM access is funneled through the shared Batcher, and
// completed elements are reported through OnHydrated so the dispatcher can
// replay buffered events against them.
type Scheduler struct {
	mu      sync.Mutex
	queue   []hydrationUnit
	pending bool
	cancel  func()

	tick        summon.Scheduler
	batcher     *dom.Batcher
	frameBudget int
	logger      *slog.Logger

	// OnHydrated fires after an element's hydration task ran.
	OnHydrated func(id string)
}

type hydrationUnit struct {
	id   string
	work Task
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithFrameBudget overrides how many tasks run per slot.
func WithFrameBudget(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.frameBudget = n
		}
	}
}

// WithSchedulerLogger overrides the scheduler's logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a hydration scheduler running slots on tick and
// batching DOM work through batcher.
func NewScheduler(tick summon.Scheduler, batcher *dom.Batcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		tick:        tick,
		batcher:     batcher,
		frameBudget: DefaultFrameBudget,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit queues one hydration unit and schedules a slot if none is pending.
func (s *Scheduler) Submit(id string, work Task) {
	s.mu.Lock()
	s.queue = append(s.queue, hydrationUnit{id: id, work: work})
	s.scheduleLocked()
	s.mu.Unlock()
}

// Pending reports how many units await execution.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Dispose cancels the pending slot and drops queued units. A slot already
// executing runs to completion.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = false
	s.queue = nil
}

func (s *Scheduler) scheduleLocked() {
	if s.pending {
		return
	}
	s.pending = true
	s.cancel = s.tick.Schedule(s.runSlot)
}

// runSlot executes up to frameBudget units, then yields the remainder to a
// freshly scheduled slot so hydration never monopolizes a frame.
func (s *Scheduler) runSlot() {
	s.mu.Lock()
	s.pending = false
	s.cancel = nil

	n := s.frameBudget
	if n > len(s.queue) {
		n = len(s.queue)
	}
	batch := s.queue[:n]
	s.queue = s.queue[n:]
	if len(s.queue) > 0 {
		s.scheduleLocked()
	}
	s.mu.Unlock()

	for _, unit := range batch {
		s.runUnit(unit)
		if s.OnHydrated != nil {
			s.OnHydrated(unit.id)
		}
	}
}

func (s *Scheduler) runUnit(unit hydrationUnit) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("hydration task failed", "id", unit.id, "panic", rec)
		}
	}()
	unit.work(s.batcher)
}
