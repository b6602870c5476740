package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models/dao"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

func TestContext(t *testing.T) {
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	b := db.NewBatch()
	require.NoError(t, dao.NewAdminDAO(db).Add(b, "alice"))
	require.NoError(t, dao.NewLedgerDAO(db).SetOwner(b, "owner"))
	require.NoError(t, b.Commit())

	ac := NewContext(db)

	ok, err := ac.IsAdmin("alice")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, ac.RequireAdmin("alice"))
	assert.ErrorIs(t, ac.RequireAdmin("bob"), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ac.RequireAdmin(""), apperrors.ErrUnauthorized)

	assert.NoError(t, ac.RequireOwner("owner"))
	assert.ErrorIs(t, ac.RequireOwner("alice"), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ac.RequireOwner(""), apperrors.ErrUnauthorized)
}

func TestRequireSelf(t *testing.T) {
	assert.NoError(t, RequireSelf("dev", "dev", "developer"))
	assert.ErrorIs(t, RequireSelf("admin", "dev", "developer"), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, RequireSelf("", "", "developer"), apperrors.ErrUnauthorized)
}
