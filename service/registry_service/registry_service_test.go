package registry_service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varity-labs/varity-app-store/conf"
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/apperrors"
	"github.com/varity-labs/varity-app-store/service/authz"
	"github.com/varity-labs/varity-app-store/service/event_service"
	"github.com/varity-labs/varity-app-store/service/validation"
)

const (
	deployer  models.Account = "0x00000000000000000000000000000000000000a1"
	developer models.Account = "0x00000000000000000000000000000000000000d1"
	other     models.Account = "0x00000000000000000000000000000000000000d2"
)

type fixture struct {
	svc    *RegistryService
	recent *event_service.RingSink
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	recent := event_service.NewRingSink(64)
	rules := validation.NewRules(conf.DefaultCategories, conf.DefaultSupportedChains, conf.DefaultTiers)
	svc := NewRegistryService(db, authz.NewContext(db), rules, event_service.NewEmitter(recent))
	svc.SetClock(func() time.Time { return time.Unix(1767225600, 0) })

	f := &fixture{svc: svc, recent: recent, ctx: context.Background()}
	require.NoError(t, svc.Initialize(f.ctx, deployer))
	return f
}

func submission(name, category string) *validation.Submission {
	return &validation.Submission{
		Name:              name,
		Description:       "An app called " + name,
		AppURL:            "https://" + name + ".example",
		LogoURL:           "https://" + name + ".example/logo.png",
		RepoURL:           "https://github.com/example/" + name,
		Category:          category,
		ChainID:           33529,
		Screenshots:       []string{"s0", "s1", "s2"},
		BuiltWithPlatform: true,
	}
}

func (f *fixture) submit(t *testing.T, dev models.Account, name, category string) uint64 {
	id, err := f.svc.Submit(f.ctx, dev, submission(name, category))
	require.NoError(t, err)
	return id
}

func ids(apps []*models.App) []uint64 {
	out := make([]uint64, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID)
	}
	return out
}

func TestInitializeIsIdempotent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Initialize(f.ctx, other))

	ok, err := f.svc.IsAdmin(f.ctx, deployer)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.IsAdmin(f.ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminOperationsBeforeInitialize(t *testing.T) {
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	defer db.Close()
	rules := validation.NewRules(conf.DefaultCategories, conf.DefaultSupportedChains, conf.DefaultTiers)
	svc := NewRegistryService(db, authz.NewContext(db), rules, nil)
	ctx := context.Background()

	id, err := svc.Submit(ctx, developer, submission("early", "Finance"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Approve(ctx, deployer, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.AddAdmin(ctx, deployer, other), apperrors.ErrUnauthorized)

	require.NoError(t, svc.Initialize(ctx, deployer))
	assert.NoError(t, svc.Approve(ctx, deployer, id))
}

func TestSubmitAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)

	var last uint64
	for i := 0; i < 6; i++ {
		id := f.submit(t, developer, fmt.Sprintf("app%d", i), "DeFi")
		assert.Equal(t, last+1, id)
		last = id
		switch i % 3 {
		case 1:
			require.NoError(t, f.svc.Reject(f.ctx, deployer, id, "spam"))
		case 2:
			require.NoError(t, f.svc.Deactivate(f.ctx, developer, id))
		}
	}

	count, err := f.svc.AppCount(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count)

	app, err := f.svc.GetApp(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatePending, app.State)
	assert.True(t, app.IsActive())
	assert.False(t, app.IsApproved())
	assert.Equal(t, developer, app.Developer)
	assert.Equal(t, int64(1767225600), app.CreatedAt)

	assert.Equal(t, models.EventAppRegistered, f.recent.Recent(0)[1].Type)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	s := submission("bad", "DeFi")
	s.Screenshots = []string{"1", "2", "3", "4", "5", "6"}
	_, err := f.svc.Submit(f.ctx, developer, s)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Submit(f.ctx, developer, submission("bad", "Defi"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidEnum)

	s = submission("bad", "DeFi")
	s.ChainID = 56
	_, err = f.svc.Submit(f.ctx, developer, s)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEnum)

	count, err := f.svc.AppCount(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestApproveRemovesFromPending(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, developer, "a", "DeFi")
	b := f.submit(t, developer, "b", "DeFi")
	c := f.submit(t, developer, "c", "DeFi")

	require.NoError(t, f.svc.Approve(f.ctx, deployer, a))

	pending, err := f.svc.ListPending(f.ctx, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{b, c}, ids(pending))

	err = f.svc.Approve(f.ctx, deployer, a)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApproved)

	err = f.svc.Approve(f.ctx, deployer, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// only rejection revokes approval, and it always clears both flags
	require.NoError(t, f.svc.Reject(f.ctx, deployer, a, "policy"))
	app, err := f.svc.GetApp(f.ctx, a)
	require.NoError(t, err)
	assert.False(t, app.IsActive())
	assert.False(t, app.IsApproved())
	assert.Equal(t, models.AppStateRejected, app.State)

	ev := f.recent.Recent(1)[0]
	assert.Equal(t, models.EventAppRejected, ev.Type)
	assert.Equal(t, "policy", ev.Payload["reason"])
}

func TestRejectIsRepeatable(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "a", "DeFi")

	require.NoError(t, f.svc.Reject(f.ctx, deployer, id, "first"))
	require.NoError(t, f.svc.Reject(f.ctx, deployer, id, "second"))

	queue, err := f.svc.PendingQueue(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	assert.Equal(t, "second", f.recent.Recent(1)[0].Payload["reason"])
	assert.Equal(t, "first", f.recent.Recent(2)[1].Payload["reason"])

	assert.ErrorIs(t, f.svc.Reject(f.ctx, deployer, 42, "x"), apperrors.ErrNotFound)
}

func TestUpdateChangesOnlyMutableFields(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "orig", "Analytics")
	require.NoError(t, f.svc.Approve(f.ctx, deployer, id))

	before, err := f.svc.GetApp(f.ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.svc.Update(f.ctx, developer, id, "new description", "https://new.example", []string{"n0"}))

	after, err := f.svc.GetApp(f.ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "new description", after.Description)
	assert.Equal(t, "https://new.example", after.AppURL)
	assert.Equal(t, []string{"n0"}, after.Screenshots)

	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Category, after.Category)
	assert.Equal(t, before.ChainID, after.ChainID)
	assert.Equal(t, before.LogoURL, after.LogoURL)
	assert.Equal(t, before.RepoURL, after.RepoURL)
	assert.Equal(t, before.Developer, after.Developer)
	assert.Equal(t, before.BuiltWithPlatform, after.BuiltWithPlatform)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, models.AppStateApproved, after.State)

	// overwritten, not merged
	_, err = f.svc.GetScreenshot(f.ctx, id, 1)
	assert.ErrorIs(t, err, apperrors.ErrOutOfBounds)

	err = f.svc.Update(f.ctx, developer, id, "", "https://new.example", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	err = f.svc.Update(f.ctx, developer, 77, "d", "u", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "a", "DeFi")
	require.NoError(t, f.svc.Approve(f.ctx, deployer, id))

	for i := 0; i < 2; i++ {
		require.NoError(t, f.svc.Deactivate(f.ctx, developer, id))
		app, err := f.svc.GetApp(f.ctx, id)
		require.NoError(t, err)
		assert.False(t, app.IsActive())
		assert.True(t, app.IsApproved())
	}
	assert.Equal(t, models.EventAppDeactivated, f.recent.Recent(1)[0].Type)
	assert.Equal(t, models.EventAppDeactivated, f.recent.Recent(2)[1].Type)
}

func TestDeactivatePendingLeavesReviewList(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "a", "DeFi")
	require.NoError(t, f.svc.Deactivate(f.ctx, developer, id))

	pending, err := f.svc.ListPending(f.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// approving a withdrawn app does not bring it back
	require.NoError(t, f.svc.Approve(f.ctx, deployer, id))
	app, err := f.svc.GetApp(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AppStateDelisted, app.State)

	all, err := f.svc.ListAll(f.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListingsFilterInactiveAndUnapproved(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, developer, "one", "DeFi")
	second := f.submit(t, developer, "two", "DeFi")
	third := f.submit(t, developer, "three", "DeFi")
	for _, id := range []uint64{first, second, third} {
		require.NoError(t, f.svc.Approve(f.ctx, deployer, id))
	}
	require.NoError(t, f.svc.Deactivate(f.ctx, developer, second))

	// unapproved app in the same category and chain
	f.submit(t, developer, "four", "DeFi")

	all, err := f.svc.ListAll(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first, third}, ids(all))

	byCategory, err := f.svc.ListByCategory(f.ctx, "DeFi", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first, third}, ids(byCategory))

	byChain, err := f.svc.ListByChain(f.ctx, 33529, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first, third}, ids(byChain))

	byDev, err := f.svc.ListByDeveloper(f.ctx, developer, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first, second, third, 4}, ids(byDev))

	limited, err := f.svc.ListAll(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first}, ids(limited))

	none, err := f.svc.ListByCategory(f.ctx, "Gaming", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnauthorizedCallers(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "a", "DeFi")

	// the deployer is an admin but not the developer
	assert.ErrorIs(t, f.svc.Update(f.ctx, deployer, id, "d", "u", nil), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Deactivate(f.ctx, deployer, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Update(f.ctx, other, id, "d", "u", nil), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Deactivate(f.ctx, other, id), apperrors.ErrUnauthorized)

	assert.ErrorIs(t, f.svc.Approve(f.ctx, developer, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Reject(f.ctx, developer, id, "x"), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Feature(f.ctx, developer, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Unfeature(f.ctx, developer, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.AddAdmin(f.ctx, developer, developer), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.RemoveAdmin(f.ctx, developer, deployer), apperrors.ErrUnauthorized)

	app, err := f.svc.GetApp(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatePending, app.State)
}

func TestScreenshotBounds(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, developer, "a", "DeFi")

	for i := 0; i < 3; i++ {
		shot, err := f.svc.GetScreenshot(f.ctx, id, i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("s%d", i), shot)
	}
	_, err := f.svc.GetScreenshot(f.ctx, id, 3)
	assert.ErrorIs(t, err, apperrors.ErrOutOfBounds)
}

func TestFeature(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t, developer, "a", "DeFi")
	b := f.submit(t, developer, "b", "DeFi")

	assert.ErrorIs(t, f.svc.Feature(f.ctx, deployer, a), apperrors.ErrNotApproved)

	require.NoError(t, f.svc.Approve(f.ctx, deployer, a))
	require.NoError(t, f.svc.Approve(f.ctx, deployer, b))
	require.NoError(t, f.svc.Feature(f.ctx, deployer, b))
	require.NoError(t, f.svc.Feature(f.ctx, deployer, a))
	require.NoError(t, f.svc.Feature(f.ctx, deployer, b))

	featured, err := f.svc.ListFeatured(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b, a}, ids(featured))

	// featuring leaves the lifecycle state alone
	app, err := f.svc.GetApp(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.AppStateApproved, app.State)

	require.NoError(t, f.svc.Unfeature(f.ctx, deployer, b))
	require.NoError(t, f.svc.Unfeature(f.ctx, deployer, b))
	require.NoError(t, f.svc.Reject(f.ctx, deployer, a, "x"))

	featured, err = f.svc.ListFeatured(f.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, featured)
}

func TestAdminSetMayBecomeEmpty(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.AddAdmin(f.ctx, deployer, other))
	ok, err := f.svc.IsAdmin(f.ctx, other)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.svc.RemoveAdmin(f.ctx, other, deployer))
	require.NoError(t, f.svc.RemoveAdmin(f.ctx, other, other))

	admins, err := f.svc.Admins(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)

	id := f.submit(t, developer, "a", "DeFi")
	assert.ErrorIs(t, f.svc.Approve(f.ctx, other, id), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Approve(f.ctx, deployer, id), apperrors.ErrUnauthorized)
}
