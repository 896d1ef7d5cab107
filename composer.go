package summon

import "reflect"

// Composer executes one composition tree. It owns the positional slot table
// that persists values across recompositions: the first pass appends slots in
// visitation order, and because recomposition replays the same root through
// the same Composer, positions line up and memoized values are found where
// they were left.
//
// A Composer is not safe for concurrent use; on the server each request gets
// its own Composer via its own Recomposer.
type Composer struct {
	recomposer *Recomposer

	slots  []slot
	cursor int
	groups []groupFrame

	// inserting is true while positions past the end of the slot table are
	// being visited for the first time.
	inserting bool
	composing bool
}

type slot struct {
	value any
	set   bool
}

type groupFrame struct {
	key  any
	node bool
}

func newComposer(rec *Recomposer) *Composer {
	return &Composer{recomposer: rec, inserting: true}
}

// Composing reports whether this composer is actively executing a pass.
func (c *Composer) Composing() bool {
	return c.composing
}

// StartGroup opens a keyed scope for positional memoization. On
// recomposition a mismatched key invalidates every slot from this position
// on - the old subtree's memory cannot be reused for a different subtree.
func (c *Composer) StartGroup(key any) {
	c.mustCompose("StartGroup")
	c.groups = append(c.groups, groupFrame{key: key})

	s := c.slotAt(c.cursor)
	if s.set && !valuesEqual(s.value, key) {
		c.truncateFrom(c.cursor)
	}
	c.storeSlot(key)
}

// EndGroup closes the innermost group.
func (c *Composer) EndGroup() {
	c.mustCompose("EndGroup")
	if len(c.groups) == 0 || c.groups[len(c.groups)-1].node {
		panic("summon: EndGroup without matching StartGroup")
	}
	c.groups = c.groups[:len(c.groups)-1]
}

// StartNode marks the beginning of an emitted UI node boundary.
func (c *Composer) StartNode() {
	c.mustCompose("StartNode")
	c.groups = append(c.groups, groupFrame{node: true})
}

// EndNode closes the innermost node boundary.
func (c *Composer) EndNode() {
	c.mustCompose("EndNode")
	if len(c.groups) == 0 || !c.groups[len(c.groups)-1].node {
		panic("summon: EndNode without matching StartNode")
	}
	c.groups = c.groups[:len(c.groups)-1]
}

// Changed compares value against the slot stored at the current position,
// stores value, and reports whether recomputation is needed. Unchanged
// inputs let callers skip an entire subtree:
//
//	if c.Changed(props) {
//	    renderExpensiveSubtree(c, props)
//	}
func (c *Composer) Changed(value any) bool {
	c.mustCompose("Changed")

	s := c.slotAt(c.cursor)
	changed := !s.set || !valuesEqual(s.value, value)
	c.storeSlot(value)
	return changed
}

// rememberSlot returns the value memoized at the current position, computing
// and storing it on first visit.
func (c *Composer) rememberSlot(calc func() any) any {
	c.mustCompose("Remember")

	s := c.slotAt(c.cursor)
	if s.set {
		c.cursor++
		return s.value
	}
	v := calc()
	c.storeSlot(v)
	return v
}

// SlotCount reports how many slots the table currently holds.
func (c *Composer) SlotCount() int {
	return len(c.slots)
}

func (c *Composer) slotAt(i int) slot {
	if i < len(c.slots) {
		return c.slots[i]
	}
	return slot{}
}

func (c *Composer) storeSlot(v any) {
	if c.cursor == len(c.slots) {
		c.slots = append(c.slots, slot{value: v, set: true})
		c.inserting = true
	} else {
		c.slots[c.cursor] = slot{value: v, set: true}
	}
	c.cursor++
}

func (c *Composer) truncateFrom(i int) {
	if i < len(c.slots) {
		c.slots = c.slots[:i]
	}
}

// beginPass resets the cursor for a new pass over the same slot table.
func (c *Composer) beginPass() {
	c.cursor = 0
	c.groups = c.groups[:0]
	c.inserting = len(c.slots) == 0
	c.composing = true
}

func (c *Composer) endPass() {
	if len(c.groups) != 0 {
		c.composing = false
		panic("summon: composition ended with unclosed groups")
	}
	// Slots past the cursor belong to scopes the pass no longer visited.
	c.truncateFrom(c.cursor)
	c.composing = false
}

func (c *Composer) mustCompose(op string) {
	if !c.composing {
		panic("summon: " + op + " called outside an active composition pass")
	}
}

// valuesEqual is slot-table equality. DeepEqual keeps Changed usable with
// slices and maps, which == would panic on.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// CurrentComposer returns the composer actively composing on the calling
// goroutine. Panics when none is - callers outside a composition pass hold
// no valid slot positions.
func CurrentComposer() *Composer {
	return requireActiveComposer("CurrentComposer")
}

// Remember returns the value memoized at the composer's current slot
// position, computing it with calc on the first pass. Panics when called
// outside an active composition pass.
func Remember[T any](c *Composer, calc func() T) T {
	v := c.rememberSlot(func() any { return calc() })
	return v.(T)
}

// RememberState memoizes a state cell holding initial. The cell is created
// once and survives recompositions at the same position; reading it inside a
// composition registers the composition as a dependency.
func RememberState[T any](c *Composer, initial func() T) *State[T] {
	return Remember(c, func() *State[T] {
		return NewState(initial())
	})
}
