package schema

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSchemaFile(t *testing.T, root, domain, version, category, name, content string) {
	t.Helper()
	dir := filepath.Join(root, domain, version, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644))
}

func TestNewResolver(t *testing.T) {
	t.Run("requires root, domain, and version", func(t *testing.T) {
		for _, args := range [][3]string{
			{"", "bees", "v1"},
			{"schemas", "", "v1"},
			{"schemas", "bees", ""},
		} {
			_, err := NewResolver(args[0], args[1], args[2])
			assert.ErrorIs(t, err, ErrMissingConfiguration)
		}
	})

	t.Run("constructs without any backing tiers", func(t *testing.T) {
		r, err := NewResolver("does/not/exist", "nowhere", "v9", WithLogger(discardLogger()))

		require.NoError(t, err)
		assert.Equal(t, "does/not/exist", r.Root())
		assert.Equal(t, "nowhere", r.Domain())
		assert.Equal(t, "v9", r.Version())
	})
}

func TestResolverLoad(t *testing.T) {
	t.Run("loads from the local filesystem", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request",
			`{"type":"object","required":["player_id"]}`)
		r, err := NewResolver(root, "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("player", "player_request")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)
		assert.Equal(t, []string{"player_id"}, doc.Required)
	})

	t.Run("falls back to the bundled filesystem", func(t *testing.T) {
		bundled := fstest.MapFS{
			"hive/v1/player/player_request.json": &fstest.MapFile{
				Data: []byte(`{"type":"object"}`),
			},
		}
		r, err := NewResolver(t.TempDir(), "hive", "v1", WithBundled(bundled), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("player", "player_request")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)
	})

	t.Run("filesystem wins over bundled", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request", `{"type":"object"}`)
		bundled := fstest.MapFS{
			"hive/v1/player/player_request.json": &fstest.MapFile{
				Data: []byte(`{"type":"array"}`),
			},
		}
		r, err := NewResolver(root, "hive", "v1", WithBundled(bundled), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("player", "player_request")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)
	})

	t.Run("corrupt local file falls through to bundled", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request", `{not json`)
		bundled := fstest.MapFS{
			"hive/v1/player/player_request.json": &fstest.MapFile{
				Data: []byte(`{"type":"object"}`),
			},
		}
		r, err := NewResolver(root, "hive", "v1", WithBundled(bundled), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("player", "player_request")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)
	})

	t.Run("missing at every tier is a miss, not an error", func(t *testing.T) {
		r, err := NewResolver(t.TempDir(), "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("player", "no_such_schema")

		assert.False(t, ok)
		assert.Nil(t, doc)
	})

	t.Run("resolves from the default embedded bundle", func(t *testing.T) {
		r, err := NewResolver("does/not/exist", "bees", "v1", WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.Load("inventory", "inventory_item")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)
		assert.Contains(t, doc.Required, "quantity")
	})

	t.Run("repeated loads return structurally equal documents", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request", `{"type":"object"}`)
		r, err := NewResolver(root, "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		first, ok := r.Load("player", "player_request")
		require.True(t, ok)
		second, ok := r.Load("player", "player_request")
		require.True(t, ok)

		assert.Same(t, first, second)
		assert.Equal(t, 1, r.CacheSize())
	})

	t.Run("load still succeeds after ClearCache", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request", `{"type":"object"}`)
		r, err := NewResolver(root, "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		before, ok := r.Load("player", "player_request")
		require.True(t, ok)

		r.ClearCache()
		assert.Equal(t, 0, r.CacheSize())

		after, ok := r.Load("player", "player_request")
		require.True(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("LoadAt resolves explicit coordinates", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "wasps", "v2", "nest", "nest_update", `{"type":"object"}`)
		r, err := NewResolver(root, "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		doc, ok := r.LoadAt("wasps", "v2", "nest", "nest_update")

		require.True(t, ok)
		assert.Equal(t, "object", doc.Type)

		_, ok = r.Load("nest", "nest_update")
		assert.False(t, ok)
	})

	t.Run("concurrent loads and clears do not race", func(t *testing.T) {
		root := t.TempDir()
		writeSchemaFile(t, root, "hive", "v1", "player", "player_request", `{"type":"object"}`)
		r, err := NewResolver(root, "hive", "v1", WithBundled(fstest.MapFS{}), WithLogger(discardLogger()))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					if n%4 == 0 {
						r.ClearCache()
						continue
					}
					if doc, ok := r.Load("player", "player_request"); ok {
						assert.Equal(t, "object", doc.Type)
					}
				}
			}(i)
		}
		wg.Wait()
	})
}

func TestParsedVersion(t *testing.T) {
	t.Run("parses the numeric part", func(t *testing.T) {
		r, err := NewResolver("schemas", "hive", "v3", WithLogger(discardLogger()))
		require.NoError(t, err)

		assert.Equal(t, 3, r.ParsedVersion())
	})

	t.Run("unparseable versions default to 1", func(t *testing.T) {
		r, err := NewResolver("schemas", "hive", "latest", WithLogger(discardLogger()))
		require.NoError(t, err)

		assert.Equal(t, 1, r.ParsedVersion())
	})
}

func TestDiscoverVersion(t *testing.T) {
	t.Run("finds the v-prefixed directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "hive", "docs"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(root, "hive", "v2"), 0o755))

		version, ok := DiscoverVersion(root, "hive")

		assert.True(t, ok)
		assert.Equal(t, "v2", version)
	})

	t.Run("ignores files and non-version directories", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "hive", "version1"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "hive", "v1"), []byte("file"), 0o644))

		_, ok := DiscoverVersion(root, "hive")

		assert.False(t, ok)
	})

	t.Run("missing domain directory is a miss", func(t *testing.T) {
		_, ok := DiscoverVersion(t.TempDir(), "nope")

		assert.False(t, ok)
	})
}
