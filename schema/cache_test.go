package schema

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Run("joins the four coordinates", func(t *testing.T) {
		assert.Equal(t, "bees/v1/player/player_request", Key("bees", "v1", "player", "player_request"))
	})

	t.Run("distinct tuples never collide", func(t *testing.T) {
		assert.NotEqual(t, Key("a", "b", "c", "d"), Key("a", "b", "c", "e"))
		assert.NotEqual(t, Key("bees", "v1", "player", "x"), Key("bees", "v1", "inventory", "x"))
		assert.NotEqual(t, Key("bees", "v1", "player", "x"), Key("bees", "v2", "player", "x"))
	})
}

func TestCache(t *testing.T) {
	t.Run("Get misses on an empty cache", func(t *testing.T) {
		cache := NewCache()

		doc, ok := cache.Get("bees/v1/player/player_request")

		assert.False(t, ok)
		assert.Nil(t, doc)
	})

	t.Run("Put then Get returns the same document", func(t *testing.T) {
		cache := NewCache()
		doc := &Document{Type: "object"}

		cache.Put("bees/v1/player/player_request", doc)

		got, ok := cache.Get("bees/v1/player/player_request")
		assert.True(t, ok)
		assert.Same(t, doc, got)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("a key maps to at most one document", func(t *testing.T) {
		cache := NewCache()
		first := &Document{Type: "object"}
		second := &Document{Type: "array"}

		cache.Put("k", first)
		cache.Put("k", second)

		got, ok := cache.Get("k")
		assert.True(t, ok)
		assert.Same(t, second, got)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("Clear empties the cache", func(t *testing.T) {
		cache := NewCache()
		cache.Put("k", &Document{})

		cache.Clear()

		_, ok := cache.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("concurrent readers, writers, and clears do not race", func(t *testing.T) {
		cache := NewCache()
		doc := &Document{Type: "object"}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					key := fmt.Sprintf("bees/v1/player/s%d", j%10)
					switch n % 4 {
					case 0:
						cache.Put(key, doc)
					case 1:
						cache.Get(key)
					case 2:
						cache.Len()
					case 3:
						cache.Clear()
					}
				}
			}(i)
		}
		wg.Wait()
	})
}
