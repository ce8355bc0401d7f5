package locks

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"access-sync/core/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Lock{}))
	return db
}

func strPtr(s string) *string { return &s }

func seed(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, r.Upsert(context.Background(), []Lock{
		{DeviceID: "dev-1", CredentialRef: "SEAM_KEY_1", RoomID: strPtr("537928-1"), Category: CategoryRoom, Name: "Room 1"},
		{DeviceID: "dev-2", CredentialRef: "SEAM_KEY_1", RoomID: strPtr("537928-2"), Category: CategoryRoom},
		{DeviceID: "dev-front", Category: CategoryCommon, Name: "Front door"},
	}))
}

func TestRegistry_Lookups(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(newTestDB(t))
	seed(t, r)

	l, err := r.ForRoom(ctx, "537928-1")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", l.DeviceID)
	assert.Equal(t, "537928-1", l.Room())

	_, err = r.ForRoom(ctx, "537928-9")
	assert.ErrorIs(t, err, ErrLockNotFound)

	common, err := r.ByCategory(ctx, CategoryCommon)
	require.NoError(t, err)
	require.Len(t, common, 1)
	assert.Equal(t, "", common[0].Room())

	rooms, err := r.RoomLocks(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, "dev-2", rooms["537928-2"].DeviceID)

	byID, err := r.ByID(ctx)
	require.NoError(t, err)
	assert.Len(t, byID, 3)

	got, err := r.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.DeviceID, got.DeviceID)

	_, err = r.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestRegistry_UpsertByDevice(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(newTestDB(t))
	seed(t, r)

	require.NoError(t, r.Upsert(ctx, []Lock{
		{DeviceID: "dev-1", CredentialRef: "SEAM_KEY_2", RoomID: strPtr("537928-1"), Category: CategoryRoom, Name: "Room 1 (new)"},
	}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	l, err := r.ForRoom(ctx, "537928-1")
	require.NoError(t, err)
	assert.Equal(t, "SEAM_KEY_2", l.CredentialRef)
	assert.Equal(t, "Room 1 (new)", l.Name)
}

func TestLock_Ref(t *testing.T) {
	l := Lock{ID: 4, DeviceID: "dev-4", CredentialRef: "K"}
	ref := l.Ref()
	assert.Equal(t, uint(4), ref.ID)
	assert.Equal(t, "dev-4", ref.Name)
	assert.Equal(t, "K", ref.CredentialRef)
}

func TestParse(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		got, err := Parse([]byte(`
locks:
  - device_id: dev-1
    credential_ref: SEAM_KEY_1
    room_id: "537928-1"
    name: Room 1
  - device_id: dev-front
    category: Common
`))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, CategoryRoom, got[0].Category)
		assert.Equal(t, CategoryCommon, got[1].Category)
		assert.Nil(t, got[1].RoomID)
	})

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"MissingDevice", "locks:\n  - room_id: \"1\"\n", "DeviceID"},
		{"RoomLockWithoutRoom", "locks:\n  - device_id: d\n    category: room\n", "RoomID"},
		{"CommonLockWithRoom", "locks:\n  - device_id: d\n    category: common\n    room_id: \"1\"\n", "common locks"},
		{"UnknownCategory", "locks:\n  - device_id: d\n    category: garage\n", "one of"},
		{"DuplicateDevice", "locks:\n  - device_id: d\n    room_id: \"1\"\n  - device_id: d\n    room_id: \"2\"\n", "already declared"},
		{"NotYAML", "locks: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(t.TempDir() + "/nope.yaml")
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	r := NewRegistry(newTestDB(t))
	seed(t, r)

	app := fiber.New()
	feature := NewFeature(r, zap.NewNop())
	assert.Equal(t, "locks", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/locks", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var list []Lock
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 3)

	resp, err = app.Test(httptest.NewRequest("GET", "/locks/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/locks/99", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/locks/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
