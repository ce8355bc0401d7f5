package commoncodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"access-sync/core/database"
	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/core/reconcile/reconciletest"
	"access-sync/feature/locks"
	"access-sync/feature/stays"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	registry *locks.Registry
	store    *Store
	provider *reconciletest.Provider
	rec      *Reconciler
	front    locks.Lock
	gym      locks.Lock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &locks.Lock{}, &CommonCode{}))

	ctx := context.Background()
	registry := locks.NewRegistry(db)
	room := "room-1"
	require.NoError(t, registry.Upsert(ctx, []locks.Lock{
		{DeviceID: "dev-front", Category: locks.CategoryCommon, Name: "Front door"},
		{DeviceID: "dev-gym", Category: locks.CategoryCommon, Name: "Gym"},
		{DeviceID: "dev-room-1", Category: locks.CategoryRoom, RoomID: &room},
	}))
	common, err := registry.ByCategory(ctx, locks.CategoryCommon)
	require.NoError(t, err)
	require.Len(t, common, 2)

	rules, err := property.NewRules(property.Config{
		Timezone:       "America/St_Johns",
		CheckInTime:    "15:30",
		CheckOutTime:   "11:30",
		ActiveStatuses: []string{"confirmed", "checked_in"},
		PinLength:      5,
	})
	require.NoError(t, err)

	store := NewStore(db)
	return &fixture{
		db:       db,
		registry: registry,
		store:    store,
		provider: reconciletest.NewProvider(),
		rec:      NewReconciler(store, registry, rules, nil),
		front:    common[0],
		gym:      common[1],
	}
}

func (f *fixture) run(t *testing.T, dryRun bool, working []stays.Stay) *reconcile.Report {
	t.Helper()
	report := reconcile.NewReport(reconcile.ScopeCommon, dryRun, testNow)
	exec := reconcile.NewExecutor(reconcile.Static(f.provider), report, reconcile.Options{
		DryRun: dryRun,
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, f.rec.Run(context.Background(), exec, working))
	report.Finish(testNow)
	return report
}

func stay(res, room, status, in, out string) stays.Stay {
	return stays.Stay{
		ID:            stays.Key(res, room),
		ReservationID: res,
		RoomID:        room,
		GuestName:     "Guest " + res,
		ResStatus:     status,
		ResCheckIn:    in,
		ResCheckOut:   out,
		RoomCheckIn:   in,
		RoomCheckOut:  out,
	}
}

func TestActiveReservations(t *testing.T) {
	f := newFixture(t)
	got := ActiveReservations([]stays.Stay{
		stay("300", "r1", "confirmed", "2026-03-02", "2026-03-05"),
		stay("100", "r1", "checked_in", "2026-03-01", "2026-03-03"),
		stay("100", "r2", "checked_in", "2026-03-01", "2026-03-03"),
		stay("200", "r3", "canceled", "2026-03-01", "2026-03-03"),
	}, f.rec.rules)

	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].ID)
	assert.Equal(t, "300", got[1].ID)
}

func TestRun_OneCodePerReservationAndLock(t *testing.T) {
	f := newFixture(t)
	working := []stays.Stay{
		stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"),
		stay("5550012345", "r2", "confirmed", "2026-03-02", "2026-03-05"),
		stay("5550067890", "r3", "checked_in", "2026-02-28", "2026-03-03"),
	}

	report := f.run(t, false, working)
	assert.Equal(t, 4, report.Summary.Created)
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Equal(t, 2, f.provider.Len("dev-front"))
	assert.Equal(t, 2, f.provider.Len("dev-gym"))

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 4)
	for _, b := range bindings {
		assert.True(t, b.HasCode())
	}

	// A second pass changes nothing remotely except window refreshes.
	f.provider.ResetCalls()
	report = f.run(t, false, working)
	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 0, f.provider.Calls["delete"])
	assert.Equal(t, 4, f.provider.Calls["update"])
	assert.Equal(t, 4, report.Summary.Updated)

	bindings, err = f.store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, bindings, 4)
}

func TestRun_RefreshesChangedWindow(t *testing.T) {
	f := newFixture(t)
	working := []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")}
	f.run(t, false, working)

	var b CommonCode
	require.NoError(t, f.db.Where("lock_id = ?", f.front.ID).First(&b).Error)

	f.provider.ResetCalls()
	working[0].ResCheckOut = "2026-03-07"
	f.run(t, false, working)

	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 0, f.provider.Calls["delete"])
	assert.Equal(t, 2, f.provider.Calls["update"])

	code, ok := f.provider.Code(b.Code())
	require.True(t, ok)
	require.NotNil(t, code.EndsAt)
	assert.Equal(t, 7, code.EndsAt.In(f.rec.rules.Location()).Day())
	assert.Equal(t, 11, code.EndsAt.In(f.rec.rules.Location()).Hour())
}

func TestRun_AdoptsMatchingCode(t *testing.T) {
	f := newFixture(t)
	seeded := f.provider.Seed("dev-front", "12345")

	report := f.run(t, false, []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")})
	assert.Equal(t, 1, report.Summary.Adopted)
	assert.Equal(t, 1, report.Summary.Created)
	// Adopted codes get their window set in the same pass.
	assert.Equal(t, 1, f.provider.Calls["update"])

	var b CommonCode
	require.NoError(t, f.db.Where("lock_id = ?", f.front.ID).First(&b).Error)
	assert.Equal(t, seeded, b.Code())
}

func TestRun_DeletesInactiveReservations(t *testing.T) {
	f := newFixture(t)
	working := []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")}
	f.run(t, false, working)
	require.Equal(t, 1, f.provider.Len("dev-front"))

	working[0].ResStatus = "canceled"
	report := f.run(t, false, working)
	assert.Equal(t, 2, report.Summary.Deleted)
	assert.Equal(t, 0, f.provider.Len("dev-front"))
	assert.Equal(t, 0, f.provider.Len("dev-gym"))

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestRun_KeepsBindingWhenRemoteDeleteFails(t *testing.T) {
	f := newFixture(t)
	f.run(t, false, []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")})

	f.provider.Fail["delete"] = errors.New("provider unavailable")
	report := f.run(t, false, nil)
	assert.Equal(t, 2, report.Summary.Failed)

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, bindings, 2)

	delete(f.provider.Fail, "delete")
	f.run(t, false, nil)
	bindings, err = f.store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestRun_FailedCreateLeavesMarkerAndRetries(t *testing.T) {
	f := newFixture(t)
	working := []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")}

	f.provider.Fail["create"] = errors.New("lock offline")
	report := f.run(t, false, working)
	assert.Equal(t, 2, report.Summary.Failed)

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	for _, b := range bindings {
		assert.False(t, b.HasCode())
	}

	delete(f.provider.Fail, "create")
	report = f.run(t, false, working)
	assert.Equal(t, 2, report.Summary.Created)

	bindings, err = f.store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	for _, b := range bindings {
		assert.True(t, b.HasCode())
	}
}

func TestRun_DropsBindingOfRemovedLock(t *testing.T) {
	f := newFixture(t)
	f.run(t, false, []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")})

	require.NoError(t, f.db.Delete(&locks.Lock{}, f.gym.ID).Error)
	f.provider.ResetCalls()
	report := f.run(t, false, []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")})

	assert.Equal(t, 0, f.provider.Calls["delete"])
	assert.Equal(t, 1, report.Summary.Deleted)

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, f.front.ID, bindings[0].LockID)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	report := f.run(t, true, []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")})

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Count(reconcile.ActionCreate))
	assert.Equal(t, 0, f.provider.Calls["create"])

	bindings, err := f.store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestRun_SkipsElapsedWindow(t *testing.T) {
	f := newFixture(t)
	report := f.run(t, false, []stays.Stay{stay("5550012345", "r1", "checked_in", "2026-02-20", "2026-02-25")})

	assert.Equal(t, 2, report.Summary.Skipped)
	assert.Equal(t, 0, f.provider.Calls["create"])
}

func TestRun_ClearsBindingToRemovedCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	working := []stays.Stay{stay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05")}
	f.run(t, false, working)

	var b CommonCode
	require.NoError(t, f.db.Where("lock_id = ?", f.front.ID).First(&b).Error)
	oldID := b.Code()
	require.NoError(t, f.provider.DeleteAccessCode(ctx, oldID))

	report := f.run(t, false, working)
	assert.Equal(t, 1, report.Summary.Failed)
	var cleared CommonCode
	require.NoError(t, f.db.Where("lock_id = ?", f.front.ID).First(&cleared).Error)
	assert.False(t, cleared.HasCode())

	f.provider.ResetCalls()
	report = f.run(t, false, working)
	assert.Equal(t, 1, report.Summary.Created)
	assert.Equal(t, 0, report.Summary.Failed)

	var healed CommonCode
	require.NoError(t, f.db.Where("lock_id = ?", f.front.ID).First(&healed).Error)
	require.True(t, healed.HasCode())
	assert.NotEqual(t, oldID, healed.Code())
	_, ok := f.provider.Code(healed.Code())
	assert.True(t, ok)

	bindings, err := f.store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
}
