package commoncodes

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists common-area bindings.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// All returns every binding ordered by id.
func (s *Store) All(ctx context.Context) ([]CommonCode, error) {
	var out []CommonCode
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Save upserts the binding for (reservation, lock), setting its code reference.
func (s *Store) Save(ctx context.Context, reservationID string, lockID uint, codeID *string) error {
	row := CommonCode{ReservationID: reservationID, LockID: lockID, AccessCodeID: codeID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reservation_id"}, {Name: "lock_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_code_id", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes a binding.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&CommonCode{}, id).Error
}
