package roomblocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrBindingNotFound is returned when a block has no stored code.
var ErrBindingNotFound = errors.New("roomblocks: binding not found")

// Store persists room block bindings.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the binding of roomBlockID.
func (s *Store) Get(ctx context.Context, roomBlockID string) (*RoomBlockCode, error) {
	var b RoomBlockCode
	err := s.db.WithContext(ctx).Where("room_block_id = ?", roomBlockID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: block %s", ErrBindingNotFound, roomBlockID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a binding.
func (s *Store) Create(ctx context.Context, b *RoomBlockCode) error {
	return s.db.WithContext(ctx).Create(b).Error
}

// All returns every binding ordered by id.
func (s *Store) All(ctx context.Context) ([]RoomBlockCode, error) {
	var out []RoomBlockCode
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Removed returns tombstoned bindings ordered by id.
func (s *Store) Removed(ctx context.Context) ([]RoomBlockCode, error) {
	var out []RoomBlockCode
	err := s.db.WithContext(ctx).Where("removed_at IS NOT NULL").Order("id").Find(&out).Error
	return out, err
}

// MarkRemoved tombstones a binding.
func (s *Store) MarkRemoved(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&RoomBlockCode{}).Where("id = ?", id).Update("removed_at", at).Error
}

// Delete removes a binding.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&RoomBlockCode{}, id).Error
}
