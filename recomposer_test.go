package summon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomposerStateMachine(t *testing.T) {
	sched := NewManualScheduler()
	var during RecomposerState

	rec := NewRecomposer(func(c *Composer) {
		during = c.recomposer.State()
	}, sched)

	assert.Equal(t, StateIdle, rec.State())

	rec.Compose()
	assert.Equal(t, StateComposing, during)
	assert.Equal(t, StateIdle, rec.State())

	rec.ScheduleRecomposition()
	assert.Equal(t, StateScheduled, rec.State())

	sched.Tick()
	assert.Equal(t, StateComposing, during)
	assert.Equal(t, StateIdle, rec.State())
}

func TestScheduleRecompositionCoalesces(t *testing.T) {
	sched := NewManualScheduler()
	passes := 0
	rec := Compose(func(c *Composer) { passes++ }, sched)

	rec.ScheduleRecomposition()
	rec.ScheduleRecomposition()
	rec.ScheduleRecomposition()

	assert.Equal(t, 1, sched.Pending())

	sched.Tick()
	assert.Equal(t, 2, passes)
}

func TestRecomposerReusesComposer(t *testing.T) {
	sched := NewManualScheduler()
	var seen []*Composer

	rec := Compose(func(c *Composer) {
		seen = append(seen, c)
	}, sched)

	rec.ScheduleRecomposition()
	sched.Tick()

	assert.Len(t, seen, 2)
	assert.Same(t, seen[0], seen[1], "recomposition must reuse the composer so slot positions line up")
}

func TestRecomposerDispose(t *testing.T) {
	t.Run("cancels pending recomposition", func(t *testing.T) {
		sched := NewManualScheduler()
		passes := 0
		rec := Compose(func(c *Composer) { passes++ }, sched)

		rec.ScheduleRecomposition()
		rec.Dispose()
		sched.Tick()

		assert.Equal(t, 1, passes)
	})

	t.Run("ignores invalidations after dispose", func(t *testing.T) {
		sched := NewManualScheduler()
		var cell *State[int]
		rec := Compose(func(c *Composer) {
			cell = RememberState(c, func() int { return 0 })
			_ = cell.Get()
		}, sched)

		rec.Dispose()
		cell.Set(1)

		assert.Equal(t, 0, sched.Pending())
	})
}

func TestManualScheduler(t *testing.T) {
	t.Run("tasks scheduled during tick run next tick", func(t *testing.T) {
		sched := NewManualScheduler()
		var order []string

		sched.Schedule(func() {
			order = append(order, "first")
			sched.Schedule(func() { order = append(order, "second") })
		})

		sched.Tick()
		assert.Equal(t, []string{"first"}, order)

		sched.Tick()
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("cancel revokes a pending task", func(t *testing.T) {
		sched := NewManualScheduler()
		ran := false

		cancel := sched.Schedule(func() { ran = true })
		cancel()
		sched.Tick()

		assert.False(t, ran)
		assert.Equal(t, 0, sched.Pending())
	})
}
