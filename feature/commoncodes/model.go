package commoncodes

import "time"

// CommonCode binds a reservation to its code on one common-area lock.
// A binding without a code reference marks a creation that failed and is retried.
type CommonCode struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID string    `gorm:"column:reservation_id;size:64;not null;uniqueIndex:idx_common_codes_res_lock" json:"reservation_id"`
	LockID        uint      `gorm:"column:lock_id;not null;uniqueIndex:idx_common_codes_res_lock" json:"lock_id"`
	AccessCodeID  *string   `gorm:"column:access_code_id;size:128" json:"access_code_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the table name for the CommonCode model.
func (CommonCode) TableName() string {
	return "common_codes"
}

// HasCode reports whether the binding holds a provider code reference.
func (c CommonCode) HasCode() bool {
	return c.AccessCodeID != nil && *c.AccessCodeID != ""
}

// Code returns the code reference or "".
func (c CommonCode) Code() string {
	if c.AccessCodeID == nil {
		return ""
	}
	return *c.AccessCodeID
}
