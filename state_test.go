package summon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCoalescing(t *testing.T) {
	t.Run("many writes schedule one recomposition", func(t *testing.T) {
		sched := NewManualScheduler()
		passes := 0

		var a, b *State[int]
		Compose(func(c *Composer) {
			passes++
			a = RememberState(c, func() int { return 0 })
			b = RememberState(c, func() int { return 0 })
			_ = a.Get()
			_ = b.Get()
		}, sched)

		a.Set(1)
		a.Set(2)
		b.Set(3)
		a.Set(4)

		assert.Equal(t, 1, sched.Pending(), "writes between ticks must coalesce")

		sched.Tick()
		assert.Equal(t, 2, passes)

		sched.Tick()
		assert.Equal(t, 2, passes, "a tick with no writes recomposes nothing")
	})

	t.Run("write after tick schedules again", func(t *testing.T) {
		sched := NewManualScheduler()
		passes := 0

		var cell *State[int]
		Compose(func(c *Composer) {
			passes++
			cell = RememberState(c, func() int { return 0 })
			_ = cell.Get()
		}, sched)

		cell.Set(1)
		sched.Tick()
		cell.Set(2)
		sched.Tick()

		assert.Equal(t, 3, passes)
	})
}

func TestStateDuringComposition(t *testing.T) {
	t.Run("write during pass applies synchronously without scheduling", func(t *testing.T) {
		sched := NewManualScheduler()

		var observed int
		Compose(func(c *Composer) {
			cell := RememberState(c, func() int { return 1 })
			if cell.Get() == 1 {
				cell.Set(2)
			}
			observed = cell.Get()
		}, sched)

		assert.Equal(t, 2, observed, "in-pass writes are visible to later reads of the same pass")
		assert.Equal(t, 0, sched.Pending(), "in-pass writes must not schedule recomposition")
	})
}

func TestStateVersioning(t *testing.T) {
	cell := NewState("x")
	assert.Equal(t, uint64(0), cell.Version())

	cell.Set("y")
	cell.Set("z")
	assert.Equal(t, uint64(2), cell.Version())
}

func TestSetIfChanged(t *testing.T) {
	sched := NewManualScheduler()
	var cell *State[int]
	Compose(func(c *Composer) {
		cell = RememberState(c, func() int { return 5 })
		_ = cell.Get()
	}, sched)

	SetIfChanged(cell, 5)
	assert.Equal(t, 0, sched.Pending(), "no-op write must not schedule")
	assert.Equal(t, uint64(0), cell.Version())

	SetIfChanged(cell, 6)
	assert.Equal(t, 1, sched.Pending())
}

func TestRemoveListener(t *testing.T) {
	sched := NewManualScheduler()
	var cell *State[int]
	rec := Compose(func(c *Composer) {
		cell = RememberState(c, func() int { return 0 })
		_ = cell.Get()
	}, sched)

	cell.RemoveListener(rec)
	cell.Set(1)
	assert.Equal(t, 0, sched.Pending())
}

func TestStateOutsideComposition(t *testing.T) {
	// Cells are plain values outside composition: reads don't register
	// dependencies and writes to an unobserved cell notify nobody.
	cell := NewState(10)
	assert.Equal(t, 10, cell.Get())
	cell.Set(11)
	assert.Equal(t, 11, cell.Get())
}
