package roomblocks

import "time"

// RoomBlockCode binds a room block to the code programmed for it.
// RemovedAt is set when the block is gone but its code could not be deleted yet.
type RoomBlockCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RoomBlockID  string     `gorm:"column:room_block_id;size:64;not null;uniqueIndex" json:"room_block_id"`
	LockID       uint       `gorm:"column:lock_id;not null;index" json:"lock_id"`
	AccessCodeID string     `gorm:"column:access_code_id;size:128;not null" json:"access_code_id"`
	RemovedAt    *time.Time `gorm:"column:removed_at;index" json:"removed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the table name for the RoomBlockCode model.
func (RoomBlockCode) TableName() string {
	return "room_block_codes"
}

// Removed reports whether the block is gone and only the code is left to delete.
func (b RoomBlockCode) Removed() bool {
	return b.RemovedAt != nil
}
