package roomcodes

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
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *stays.Store
	provider *reconciletest.Provider
	rec      *Reconciler
	rules    *property.Rules
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &locks.Lock{}, &stays.Stay{}))

	registry := locks.NewRegistry(db)
	r1, r2 := "r1", "r2"
	require.NoError(t, registry.Upsert(context.Background(), []locks.Lock{
		{DeviceID: "dev-1", Category: locks.CategoryRoom, RoomID: &r1},
		{DeviceID: "dev-2", Category: locks.CategoryRoom, RoomID: &r2},
		{DeviceID: "dev-front", Category: locks.CategoryCommon},
	}))

	rules, err := property.NewRules(property.Config{
		Timezone:       "America/St_Johns",
		CheckInTime:    "15:30",
		CheckOutTime:   "11:30",
		ActiveStatuses: []string{"confirmed", "checked_in"},
		PinLength:      5,
	})
	require.NoError(t, err)

	store := stays.NewStore(db)
	return &fixture{
		store:    store,
		provider: reconciletest.NewProvider(),
		rec:      NewReconciler(store, registry, rules, nil),
		rules:    rules,
	}
}

func (f *fixture) seed(t *testing.T, list ...stays.Stay) {
	t.Helper()
	require.NoError(t, f.store.Upsert(context.Background(), list))
}

func (f *fixture) run(t *testing.T, dryRun bool) *reconcile.Report {
	t.Helper()
	ctx := context.Background()
	working, err := f.store.All(ctx)
	require.NoError(t, err)

	report := reconcile.NewReport(reconcile.ScopeRoom, dryRun, testNow)
	exec := reconcile.NewExecutor(reconcile.Static(f.provider), report, reconcile.Options{
		DryRun: dryRun,
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, f.rec.Run(ctx, exec, working))
	return report
}

func (f *fixture) stay(t *testing.T, id string) *stays.Stay {
	t.Helper()
	st, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return st
}

func newStay(res, room, status, in, out string) stays.Stay {
	return stays.Stay{
		ID:            stays.Key(res, room),
		ReservationID: res,
		RoomID:        room,
		GuestName:     "Guest " + res,
		ResStatus:     status,
		RoomCheckIn:   in,
		RoomCheckOut:  out,
		ResCheckIn:    in,
		ResCheckOut:   out,
	}
}

func TestRun_CreatesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"),
		newStay("5550067890", "r2", "checked_in", "2026-02-28", "2026-03-03"),
		newStay("5550055555", "r9", "confirmed", "2026-03-02", "2026-03-05"),
	)

	report := f.run(t, false)
	assert.Equal(t, 2, report.Summary.Created)
	assert.Equal(t, 0, report.Summary.Failed)

	st := f.stay(t, "5550012345_r1")
	require.True(t, st.HasCode())
	code, ok := f.provider.Code(st.Code())
	require.True(t, ok)
	assert.Equal(t, "12345", code.Code)
	assert.Equal(t, "dev-1", code.DeviceID)
	assert.Equal(t, "Guest 5550012345", code.Name)

	want, err := f.rules.StayWindow("2026-03-02", "2026-03-05")
	require.NoError(t, err)
	assert.True(t, want.Start.Equal(*code.StartsAt))
	assert.True(t, want.End.Equal(*code.EndsAt))

	assert.False(t, f.stay(t, "5550055555_r9").HasCode())

	f.provider.ResetCalls()
	report = f.run(t, false)
	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 0, f.provider.Calls["delete"])
	assert.Equal(t, 2, f.provider.Calls["update"])
	assert.Equal(t, 1, f.provider.Len("dev-1"))
	assert.Equal(t, 1, f.provider.Len("dev-2"))
}

func TestRun_RefreshesChangedWindow(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))
	f.run(t, false)
	codeID := f.stay(t, "5550012345_r1").Code()

	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-08"))
	f.provider.ResetCalls()
	f.run(t, false)

	assert.Equal(t, 1, f.provider.Calls["update"])
	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 0, f.provider.Calls["delete"])

	code, ok := f.provider.Code(codeID)
	require.True(t, ok)
	want, err := f.rules.StayWindow("2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.True(t, want.End.Equal(*code.EndsAt))
}

func TestRun_AdoptsBeforeCreating(t *testing.T) {
	f := newFixture(t)
	seeded := f.provider.Seed("dev-1", "12345")
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))

	report := f.run(t, false)
	assert.Equal(t, 1, report.Summary.Adopted)
	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 1, f.provider.Calls["update"])
	assert.Equal(t, seeded, f.stay(t, "5550012345_r1").Code())
	assert.Equal(t, 1, f.provider.Len("dev-1"))
}

func TestRun_RevokesInactiveStay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))
	f.run(t, false)
	require.Equal(t, 1, f.provider.Len("dev-1"))

	f.seed(t, newStay("5550012345", "r1", "canceled", "2026-03-02", "2026-03-05"))
	report := f.run(t, false)

	assert.Equal(t, 1, report.Summary.Deleted)
	assert.Equal(t, 0, f.provider.Len("dev-1"))
	assert.False(t, f.stay(t, "5550012345_r1").HasCode())
}

func TestRun_RevocationFailureKeepsReference(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))
	f.run(t, false)
	codeID := f.stay(t, "5550012345_r1").Code()

	f.seed(t, newStay("5550012345", "r1", "no_show", "2026-03-02", "2026-03-05"))
	f.provider.Fail["delete"] = errors.New("provider unavailable")
	report := f.run(t, false)

	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, codeID, f.stay(t, "5550012345_r1").Code())
	// An inactive stay keeps its code but is not refreshed.
	assert.Equal(t, 0, f.provider.Calls["update"])
}

func TestRun_RevokedCodeAlreadyGone(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "canceled", "2026-03-02", "2026-03-05"))
	require.NoError(t, f.store.SetCode(context.Background(), "5550012345_r1", strPtr("code_missing")))

	report := f.run(t, false)
	assert.Equal(t, 1, report.Summary.Deleted)
	assert.False(t, f.stay(t, "5550012345_r1").HasCode())
}

func TestRun_SkipsUnderivablePIN(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("AB12", "r1", "confirmed", "2026-03-02", "2026-03-05"))

	report := f.run(t, false)
	assert.Equal(t, 1, report.Summary.Skipped)
	assert.Equal(t, 0, f.provider.Calls["create"])
}

func TestRun_ListingFailureCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))
	f.provider.Fail["list"] = errors.New("timeout")

	report := f.run(t, false)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.False(t, f.stay(t, "5550012345_r1").HasCode())
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"),
		newStay("5550067890", "r2", "canceled", "2026-03-02", "2026-03-05"),
	)
	require.NoError(t, f.store.SetCode(context.Background(), "5550067890_r2", strPtr("code_old")))

	report := f.run(t, true)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Count(reconcile.ActionCreate))
	assert.Equal(t, 1, report.Count(reconcile.ActionDelete))
	for _, a := range report.Actions {
		if a.Type != reconcile.ActionSkip {
			assert.True(t, a.Planned)
		}
	}

	assert.Equal(t, 0, f.provider.Calls["create"])
	assert.Equal(t, 0, f.provider.Calls["delete"])
	assert.False(t, f.stay(t, "5550012345_r1").HasCode())
	assert.Equal(t, "code_old", f.stay(t, "5550067890_r2").Code())
}

func strPtr(s string) *string { return &s }

func TestRun_ClearsReferenceToRemovedCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, newStay("5550012345", "r1", "confirmed", "2026-03-02", "2026-03-05"))
	f.run(t, false)
	oldID := f.stay(t, "5550012345_r1").Code()
	require.NoError(t, f.provider.DeleteAccessCode(ctx, oldID))

	report := f.run(t, false)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.False(t, f.stay(t, "5550012345_r1").HasCode())

	f.provider.ResetCalls()
	report = f.run(t, false)
	assert.Equal(t, 1, report.Summary.Created)
	st := f.stay(t, "5550012345_r1")
	require.True(t, st.HasCode())
	assert.NotEqual(t, oldID, st.Code())
	_, ok := f.provider.Code(st.Code())
	assert.True(t, ok)
}

func TestRun_SharedCodeRecoversAfterRevocation(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		newStay("1110012345", "r1", "confirmed", "2026-03-02", "2026-03-05"),
		newStay("2220012345", "r1", "confirmed", "2026-03-02", "2026-03-05"),
	)
	f.run(t, false)
	first, second := f.stay(t, "1110012345_r1"), f.stay(t, "2220012345_r1")
	require.True(t, first.HasCode())
	require.Equal(t, first.Code(), second.Code())

	f.seed(t, newStay("1110012345", "r1", "canceled", "2026-03-02", "2026-03-05"))
	f.run(t, false)
	assert.False(t, f.stay(t, "1110012345_r1").HasCode())
	assert.False(t, f.stay(t, "2220012345_r1").HasCode())

	f.run(t, false)
	st := f.stay(t, "2220012345_r1")
	require.True(t, st.HasCode())
	code, ok := f.provider.Code(st.Code())
	require.True(t, ok)
	assert.Equal(t, "12345", code.Code)
	assert.Equal(t, 1, f.provider.Len("dev-1"))
}
