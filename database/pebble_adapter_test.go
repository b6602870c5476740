package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) Database {
	db, err := NewPebbleDatabase(&PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBatchCommitVisibility(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(t, b.Set(CollectionApps, []byte("k1"), []byte("v1")))
	require.NoError(t, b.Set(CollectionPricing, []byte("k1"), []byte("p1")))

	// read-your-writes inside the batch
	v, err := b.Get(CollectionApps, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	// nothing visible before commit
	_, err = db.Get(CollectionApps, []byte("k1"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Commit())
	b.Discard()

	v, err = db.Get(CollectionPricing, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, "p1", string(v))
}

func TestBatchDiscard(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(t, b.Set(CollectionAdmins, []byte("alice"), []byte{1}))
	b.Discard()

	ok, err := db.Has(CollectionAdmins, []byte("alice"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, b.Commit(), ErrBatchClosed)
}

func TestCollectionsAreIsolated(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(t, b.Set("apps", []byte("1"), []byte("a")))
	require.NoError(t, b.Set("apps_x", []byte("1"), []byte("b")))
	require.NoError(t, b.Commit())

	var keys []string
	err := db.Scan("apps", nil, func(key, value []byte) (bool, error) {
		keys = append(keys, string(key)+"="+string(value))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1=a"}, keys)
}

func TestScanPrefixOrderAndStop(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	for _, k := range []string{"dev1\x00c", "dev1\x00a", "dev2\x00a", "dev1\x00b"} {
		require.NoError(t, b.Set(CollectionAppsDeveloper, []byte(k), nil))
	}
	require.NoError(t, b.Commit())

	var keys []string
	err := db.Scan(CollectionAppsDeveloper, []byte("dev1\x00"), func(key, _ []byte) (bool, error) {
		keys = append(keys, string(key))
		return len(keys) < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev1\x00a", "dev1\x00b"}, keys)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(t, b.Set(CollectionPending, []byte("x"), []byte("1")))
	require.NoError(t, b.Commit())

	b = db.NewBatch()
	require.NoError(t, b.Delete(CollectionPending, []byte("x")))
	ok, err := b.Has(CollectionPending, []byte("x"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, b.Commit())

	_, err = db.Get(CollectionPending, []byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte("apps0"), upperBound([]byte("apps/")))
	assert.Equal(t, []byte{0x02}, upperBound([]byte{0x01, 0xff}))
	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
}
