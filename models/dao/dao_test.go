package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
)

func newTestDB(t *testing.T) database.Database {
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func commit(t *testing.T, db database.Database, fn func(b database.Batch)) {
	b := db.NewBatch()
	fn(b)
	require.NoError(t, b.Commit())
}

func TestPendingSwapRemove(t *testing.T) {
	db := newTestDB(t)
	pending := NewPendingDAO(db)

	commit(t, db, func(b database.Batch) {
		for _, id := range []uint64{1, 2, 3, 4} {
			require.NoError(t, pending.Add(b, id))
		}
	})

	commit(t, db, func(b database.Batch) {
		ok, err := pending.Remove(b, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	ids, err := pending.List()
	require.NoError(t, err)
	// last entry moved into the freed slot
	assert.Equal(t, []uint64{1, 4, 3}, ids)

	n, err := pending.Len(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	commit(t, db, func(b database.Batch) {
		ok, err := pending.Remove(b, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		// removing the tail needs no swap
		ok, err = pending.Remove(b, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = pending.Remove(b, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	ids, err = pending.List()
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, ids)

	in, err := pending.Contains(db, 4)
	require.NoError(t, err)
	assert.True(t, in)
	in, err = pending.Contains(db, 1)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestFeaturedAddRemove(t *testing.T) {
	db := newTestDB(t)
	featured := NewFeaturedDAO(db)

	commit(t, db, func(b database.Batch) {
		added, err := featured.Add(b, 7)
		require.NoError(t, err)
		assert.True(t, added)
		added, err = featured.Add(b, 7)
		require.NoError(t, err)
		assert.False(t, added)
		_, err = featured.Add(b, 3)
		require.NoError(t, err)
	})

	ids, err := featured.List()
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 3}, ids)

	commit(t, db, func(b database.Batch) {
		removed, err := featured.Remove(b, 7)
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = featured.Remove(b, 7)
		require.NoError(t, err)
		assert.False(t, removed)
		_, err = featured.Add(b, 7)
		require.NoError(t, err)
	})

	ids, err = featured.List()
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 7}, ids)
}

func TestAppIndexes(t *testing.T) {
	db := newTestDB(t)
	apps := NewAppDAO(db)

	commit(t, db, func(b database.Batch) {
		for i, cat := range []string{"DeFi", "Gaming", "DeFi"} {
			id, err := apps.NextID(b)
			require.NoError(t, err)
			assert.Equal(t, uint64(i+1), id)
			require.NoError(t, apps.Create(b, &models.App{
				ID:        id,
				Name:      "app",
				Category:  cat,
				ChainID:   uint64(42161 + i%2),
				Developer: "dev",
				State:     models.AppStatePending,
			}))
		}
	})

	ids, err := apps.IDsByCategory("DeFi")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ids)

	ids, err = apps.IDsByChain(42162)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids)

	ids, err = apps.IDsByDeveloper("dev")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	ids, err = apps.IDsByDeveloper("de")
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := apps.Count(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	_, err = apps.Get(db, 4)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLedgerTotalsAndBilling(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerDAO(db)

	owner, err := ledger.Owner(db)
	require.NoError(t, err)
	assert.True(t, owner.IsZero())

	commit(t, db, func(b database.Batch) {
		require.NoError(t, ledger.SetOwner(b, "owner"))
		require.NoError(t, ledger.PutTotals(b, models.RevenueTotals{PlatformRevenue: 10, DeveloperPayouts: 90}))
		require.NoError(t, ledger.PutBilling(b, 1, 202602, 49))
		require.NoError(t, ledger.PutPurchase(b, &models.Purchase{AppID: 1, Buyer: "bob", Price: 100}))
	})

	totals, err := ledger.Totals(db)
	require.NoError(t, err)
	assert.Equal(t, models.RevenueTotals{PlatformRevenue: 10, DeveloperPayouts: 90}, totals)

	amount, err := ledger.GetBilling(db, 1, 202602)
	require.NoError(t, err)
	assert.Equal(t, uint64(49), amount)

	var entries []models.BillingPayment
	require.NoError(t, ledger.ScanBilling(func(bp *models.BillingPayment) (bool, error) {
		entries = append(entries, *bp)
		return true, nil
	}))
	assert.Equal(t, []models.BillingPayment{{AppID: 1, Period: 202602, Amount: 49}}, entries)

	bought, err := ledger.HasPurchased(db, 1, "bob")
	require.NoError(t, err)
	assert.True(t, bought)
	bought, err = ledger.HasPurchased(db, 1, "bo")
	require.NoError(t, err)
	assert.False(t, bought)
}
