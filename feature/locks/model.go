package locks

import (
	"time"

	"access-sync/core/reconcile"
)

// Category tells whether a lock guards one room or a shared area.
type Category string

const (
	// CategoryRoom locks open a single room.
	CategoryRoom Category = "room"
	// CategoryCommon locks are shared by every active reservation.
	CategoryCommon Category = "common"
)

// Lock is a physical lock provisioned in the registry.
type Lock struct {
	ID            uint      `gorm:"primaryKey" json:"id" yaml:"-"`
	DeviceID      string    `gorm:"column:device_id;size:64;uniqueIndex;not null" json:"device_id" yaml:"device_id" validate:"required"`
	CredentialRef string    `gorm:"column:credential_ref;size:128" json:"credential_ref" yaml:"credential_ref"`
	RoomID        *string   `gorm:"column:room_id;size:64;index" json:"room_id,omitempty" yaml:"room_id" validate:"required_if=Category room,excluded_if=Category common"`
	Category      Category  `gorm:"column:category;size:16;index;not null" json:"category" yaml:"category" validate:"required,oneof=room common"`
	Name          string    `gorm:"column:name;size:128" json:"name" yaml:"name"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// TableName returns the table name for the Lock model.
func (Lock) TableName() string {
	return "locks"
}

// Ref returns the descriptor the reconcilers drive the provider with.
func (l Lock) Ref() reconcile.LockRef {
	name := l.Name
	if name == "" {
		name = l.DeviceID
	}
	return reconcile.LockRef{
		ID:            l.ID,
		DeviceID:      l.DeviceID,
		CredentialRef: l.CredentialRef,
		Name:          name,
	}
}

// Room returns the room id, or "" for common locks.
func (l Lock) Room() string {
	if l.RoomID == nil {
		return ""
	}
	return *l.RoomID
}
