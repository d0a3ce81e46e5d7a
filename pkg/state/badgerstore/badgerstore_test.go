package badgerstore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-booster/pkg/state"
)

func TestBackendInMemoryRoundTrip(t *testing.T) {
	backend, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, ok, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Put(ctx, "doc", []byte(`{"a":1}`)))

	data, ok, err := backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), data)

	require.NoError(t, backend.Delete(ctx, "doc"))
	_, ok, err = backend.Get(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackendKeysArePrefixed(t *testing.T) {
	backend, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Put(context.Background(), "doc", []byte("x")))

	err = backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("booster/doc"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("x"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestBackendPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.Logger = zap.NewNop()

	backend, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, backend.Put(context.Background(), "doc", []byte("kept")))
	require.NoError(t, backend.Close())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("kept"), data)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestBlobStoreOverBadger(t *testing.T) {
	backend, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer backend.Close()

	type doc struct {
		Title string `json:"title"`
	}
	store := state.NewBlobStore(backend, state.NewCodec[doc](1))

	_, err = store.Save(context.Background(), "k", doc{Title: "hello"}, state.Meta{})
	require.NoError(t, err)

	got, meta, ok, err := store.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, 1, meta.SchemaVersion)
}
