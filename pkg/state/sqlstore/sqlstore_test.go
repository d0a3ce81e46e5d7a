package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-booster/pkg/state"
)

func TestBackendInMemory(t *testing.T) {
	backend, err := Open(WithSqliteInMemory())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, ok, err := backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Put(ctx, "doc", []byte("one")))
	require.NoError(t, backend.Put(ctx, "doc", []byte("two")))

	data, ok, err := backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(data))

	var count int64
	require.NoError(t, backend.db.Model(&sqlSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, backend.Delete(ctx, "doc"))
	_, ok, err = backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackendFilePersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "booster.db")

	backend, err := Open(WithSqlite(file))
	require.NoError(t, err)
	require.NoError(t, backend.Put(context.Background(), "doc", []byte("kept")))
	require.NoError(t, backend.Close())

	reopened, err := Open(WithSqlite(file))
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", string(data))
}

func TestBlobStoreOverSQL(t *testing.T) {
	backend, err := Open(WithSqliteInMemory())
	require.NoError(t, err)
	defer backend.Close()

	type doc struct {
		Title string `json:"title"`
	}
	store := state.NewBlobStore(backend, state.NewCodec[doc](1))

	_, err = store.Save(context.Background(), "k", doc{Title: "hello"}, state.Meta{})
	require.NoError(t, err)

	got, _, ok, err := store.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got.Title)
}
