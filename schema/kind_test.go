package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("classifies generic JSON tree values", func(t *testing.T) {
		assert.Equal(t, KindNull, KindOf(nil))
		assert.Equal(t, KindObject, KindOf(map[string]any{}))
		assert.Equal(t, KindArray, KindOf([]any{1, 2}))
		assert.Equal(t, KindString, KindOf("hi"))
		assert.Equal(t, KindNumber, KindOf(3.14))
		assert.Equal(t, KindBoolean, KindOf(true))
	})

	t.Run("native integers count as numbers", func(t *testing.T) {
		assert.Equal(t, KindNumber, KindOf(42))
		assert.Equal(t, KindNumber, KindOf(int64(42)))
		assert.Equal(t, KindNumber, KindOf(uint8(7)))
	})

	t.Run("unclassifiable values are other", func(t *testing.T) {
		assert.Equal(t, KindOther, KindOf(struct{}{}))
	})
}

func TestMatchesType(t *testing.T) {
	t.Run("matches each enumerated type against its kind", func(t *testing.T) {
		assert.True(t, matchesType(map[string]any{}, "object"))
		assert.True(t, matchesType([]any{}, "array"))
		assert.True(t, matchesType("x", "string"))
		assert.True(t, matchesType(1.0, "number"))
		assert.True(t, matchesType(false, "boolean"))
		assert.True(t, matchesType(nil, "null"))
	})

	t.Run("rejects mismatched kinds", func(t *testing.T) {
		assert.False(t, matchesType("x", "number"))
		assert.False(t, matchesType(1.0, "string"))
		assert.False(t, matchesType(nil, "object"))
		assert.False(t, matchesType(map[string]any{}, "array"))
	})

	t.Run("unknown expected types always match", func(t *testing.T) {
		assert.True(t, matchesType("x", "integer"))
		assert.True(t, matchesType(nil, "timestamp"))
		assert.True(t, matchesType(map[string]any{}, ""))
	})
}

func TestKindString(t *testing.T) {
	t.Run("names follow the schema type vocabulary", func(t *testing.T) {
		assert.Equal(t, "object", KindObject.String())
		assert.Equal(t, "null", KindNull.String())
		assert.Equal(t, "unknown", KindOther.String())
	})
}
