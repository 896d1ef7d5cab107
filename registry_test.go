package summon

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallbackRegistry(t *testing.T) {
	t.Run("register and execute", func(t *testing.T) {
		reg := NewCallbackRegistry()
		ran := false

		reg.BeginRender()
		id := reg.RegisterCallback(func() { ran = true })
		ids := reg.FinishRenderAndCollectCallbackIDs()

		assert.Equal(t, []string{id}, ids)
		assert.True(t, reg.ExecuteCallback(id))
		assert.True(t, ran)
	})

	t.Run("unknown id returns false without panicking", func(t *testing.T) {
		reg := NewCallbackRegistry()
		assert.False(t, reg.ExecuteCallback("cb-deadbeef"))
	})

	t.Run("ids are distinct within an epoch", func(t *testing.T) {
		reg := NewCallbackRegistry()
		reg.BeginRender()
		a := reg.RegisterCallback(func() {})
		b := reg.RegisterCallback(func() {})
		reg.FinishRenderAndCollectCallbackIDs()

		assert.NotEqual(t, a, b)
	})
}

func TestEpochRotationDoesNotEvict(t *testing.T) {
	t.Run("id survives later epochs", func(t *testing.T) {
		reg := NewCallbackRegistry()

		reg.BeginRender()
		a := reg.RegisterCallback(func() {})
		reg.FinishRenderAndCollectCallbackIDs()

		// A whole second render that never touches A.
		reg.BeginRender()
		reg.RegisterCallback(func() {})
		reg.FinishRenderAndCollectCallbackIDs()

		assert.True(t, reg.ExecuteCallback(a))
	})

	t.Run("id survives an abandoned render context", func(t *testing.T) {
		reg := NewCallbackRegistry()

		reg.BeginRender()
		a := reg.RegisterCallback(func() {})
		ids := reg.FinishRenderAndCollectCallbackIDs()
		assert.Contains(t, ids, a)

		reg.BeginRender()
		reg.RegisterCallback(func() {})
		reg.AbandonRenderContext()

		assert.True(t, reg.ExecuteCallback(a))
	})

	t.Run("abandon collects nothing", func(t *testing.T) {
		reg := NewCallbackRegistry()
		reg.BeginRender()
		reg.RegisterCallback(func() {})
		reg.AbandonRenderContext()

		assert.Nil(t, reg.FinishRenderAndCollectCallbackIDs())
	})
}

func TestBeginRenderIdempotent(t *testing.T) {
	reg := NewCallbackRegistry()

	reg.BeginRender()
	a := reg.RegisterCallback(func() {})

	// An unclosed epoch is discarded by the next BeginRender; closures
	// registered under it stay executable.
	reg.BeginRender()
	b := reg.RegisterCallback(func() {})
	ids := reg.FinishRenderAndCollectCallbackIDs()

	assert.Equal(t, []string{b}, ids)
	assert.True(t, reg.ExecuteCallback(a))
}

func TestRegisterWithoutEpoch(t *testing.T) {
	reg := NewCallbackRegistry()
	id := reg.RegisterCallback(func() {})
	assert.True(t, reg.ExecuteCallback(id))
}

func TestClear(t *testing.T) {
	reg := NewCallbackRegistry()
	reg.BeginRender()
	id := reg.RegisterCallback(func() {})
	reg.FinishRenderAndCollectCallbackIDs()

	assert.Equal(t, 1, reg.Len())
	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.ExecuteCallback(id))
}

func TestTTLEviction(t *testing.T) {
	now := time.Unix(1000, 0)
	reg := NewCallbackRegistry(WithTTL(time.Minute))
	reg.now = func() time.Time { return now }

	reg.BeginRender()
	old := reg.RegisterCallback(func() {})
	reg.FinishRenderAndCollectCallbackIDs()

	now = now.Add(2 * time.Minute)

	t.Run("expired id no longer executes", func(t *testing.T) {
		assert.False(t, reg.ExecuteCallback(old))
	})

	t.Run("sweep reclaims on next render", func(t *testing.T) {
		reg.BeginRender()
		fresh := reg.RegisterCallback(func() {})
		reg.FinishRenderAndCollectCallbackIDs()

		assert.Equal(t, 1, reg.Len())
		assert.True(t, reg.ExecuteCallback(fresh))
	})
}

func TestConcurrentRenderPasses(t *testing.T) {
	reg := NewCallbackRegistry()
	const perPass = 20

	var wg sync.WaitGroup
	results := make([][]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.BeginRender()
			for j := 0; j < perPass; j++ {
				reg.RegisterCallback(func() {})
			}
			results[i] = reg.FinishRenderAndCollectCallbackIDs()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ids := range results {
		assert.Len(t, ids, perPass, "each pass collects exactly its own ids")
		for _, id := range ids {
			assert.False(t, seen[id], "ids must be unique across concurrent passes")
			seen[id] = true
			assert.True(t, reg.ExecuteCallback(id))
		}
	}
}
