package summon

import "sync"

// Scheduler defers work to a future tick. On the client a tick maps to the
// browser event loop; on the server and in tests a ManualScheduler stands in.
//
// Schedule returns a cancel function that revokes the task if it has not run
// yet. Cancelling an already-executed task is a no-op; once a task starts it
// runs to completion.
type Scheduler interface {
	Schedule(task func()) (cancel func())
}

// ManualScheduler queues tasks until Tick is called. It is the Scheduler
// used for server-side composition and for tests that need deterministic
// control over when deferred work runs.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*scheduledTask
}

type scheduledTask struct {
	run       func()
	cancelled bool
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues a task for the next Tick.
func (s *ManualScheduler) Schedule(task func()) (cancel func()) {
	st := &scheduledTask{run: task}

	s.mu.Lock()
	s.tasks = append(s.tasks, st)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		st.cancelled = true
		s.mu.Unlock()
	}
}

// Tick runs every task queued before the call, in FIFO order. Tasks queued
// while Tick is running land in the next tick, matching how a browser event
// loop turn never executes work scheduled during the same turn.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, st := range tasks {
		if st.cancelled {
			continue
		}
		st.run()
	}
}

// Pending reports how many uncancelled tasks are waiting for the next tick.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, st := range s.tasks {
		if !st.cancelled {
			n++
		}
	}
	return n
}
