package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KeyCart)
			assert.True(t, errors.IsNotFound(err), "missing key should be not found, got %v", err)

			require.NoError(t, s.Set(ctx, KeyCart, []byte(`[1,2]`)))
			got, err := s.Get(ctx, KeyCart)
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, s.Set(ctx, KeyCart, []byte(`[3]`)))
			got, err = s.Get(ctx, KeyCart)
			require.NoError(t, err)
			assert.Equal(t, `[3]`, string(got), "last write wins")

			require.NoError(t, s.Delete(ctx, KeyCart))
			_, err = s.Get(ctx, KeyCart)
			assert.True(t, errors.IsNotFound(err))

			// deleting a missing key is not an error
			assert.NoError(t, s.Delete(ctx, KeyCart))
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeyCart, []byte(`"c"`)))
			require.NoError(t, s.Set(ctx, KeyWishlist, []byte(`"w"`)))
			require.NoError(t, s.Delete(ctx, KeyCart))

			got, err := s.Get(ctx, KeyWishlist)
			require.NoError(t, err)
			assert.Equal(t, `"w"`, string(got))
		})
	}
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var seen []string
			cancel := s.Subscribe(KeyCheckoutDraft, func(v []byte) {
				if v == nil {
					seen = append(seen, "<deleted>")
					return
				}
				seen = append(seen, string(v))
			})

			require.NoError(t, s.Set(ctx, KeyCheckoutDraft, []byte(`{"a":1}`)))
			require.NoError(t, s.Set(ctx, KeyCart, []byte(`[]`)))
			require.NoError(t, s.Delete(ctx, KeyCheckoutDraft))
			cancel()
			cancel()
			require.NoError(t, s.Set(ctx, KeyCheckoutDraft, []byte(`{"a":2}`)))

			assert.Equal(t, []string{`{"a":1}`, "<deleted>"}, seen)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, SetJSON(ctx, s, KeyWishlist, []string{"p1", "p2"}))
	var ids []string
	require.NoError(t, GetJSON(ctx, s, KeyWishlist, &ids))
	assert.Equal(t, []string{"p1", "p2"}, ids)

	require.NoError(t, s.Set(ctx, KeyWishlist, []byte(`not json`)))
	err := GetJSON(ctx, s, KeyWishlist, &ids)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))

	err = GetJSON(ctx, s, KeyUser, &ids)
	assert.False(t, IsDecodeError(err))
	assert.True(t, errors.IsNotFound(err))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToken, []byte(`"abc"`)))

	second, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	got, err := second.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))

	_, err = os.Stat(filepath.Join(dir, "token.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Error(t, fs.Set(context.Background(), "../escape", []byte("x")))
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Backend: config.StorageMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.StorageConfig{Backend: config.StorageFile, StateDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(config.StorageConfig{Backend: "tape"}, nil)
	assert.Error(t, err)
}
