package locks

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLockNotFound is returned when no lock matches a lookup.
var ErrLockNotFound = errors.New("locks: lock not found")

// Registry is the read side of the lock table plus provisioning upserts.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a registry over db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// ForRoom returns the room lock bound to roomID.
func (r *Registry) ForRoom(ctx context.Context, roomID string) (*Lock, error) {
	var l Lock
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND category = ?", roomID, CategoryRoom).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: room %s", ErrLockNotFound, roomID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Get returns the lock with the given id.
func (r *Registry) Get(ctx context.Context, id uint) (*Lock, error) {
	var l Lock
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrLockNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ByCategory returns every lock in category, ordered by id.
func (r *Registry) ByCategory(ctx context.Context, category Category) ([]Lock, error) {
	var out []Lock
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("id").Find(&out).Error
	return out, err
}

// RoomLocks returns room locks keyed by room id.
func (r *Registry) RoomLocks(ctx context.Context) (map[string]Lock, error) {
	list, err := r.ByCategory(ctx, CategoryRoom)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Lock, len(list))
	for _, l := range list {
		if l.RoomID != nil {
			out[*l.RoomID] = l
		}
	}
	return out, nil
}

// ByID returns every lock keyed by id.
func (r *Registry) ByID(ctx context.Context) (map[uint]Lock, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]Lock, len(list))
	for _, l := range list {
		out[l.ID] = l
	}
	return out, nil
}

// List returns every lock ordered by id.
func (r *Registry) List(ctx context.Context) ([]Lock, error) {
	var out []Lock
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Upsert inserts locks, updating existing ones matched by device id.
func (r *Registry) Upsert(ctx context.Context, locks []Lock) error {
	if len(locks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"credential_ref", "room_id", "category", "name", "updated_at"}),
	}).Create(&locks).Error
}
