package stays

import (
	"time"

	"access-sync/core/cloudbeds"

	"gorm.io/datatypes"
)

// Stay is one occupied room interval of a reservation.
type Stay struct {
	// ID is "<reservationID>_<roomID>".
	ID            string         `gorm:"primaryKey;size:128" json:"id"`
	ReservationID string         `gorm:"column:reservation_id;size:64;index;not null" json:"reservation_id"`
	RoomID        string         `gorm:"column:room_id;size:64;index;not null" json:"room_id"`
	RoomName      string         `gorm:"column:room_name;size:128" json:"room_name"`
	GuestName     string         `gorm:"column:guest_name;size:255" json:"guest_name"`
	RoomStatus    string         `gorm:"column:room_status;size:32" json:"room_status"`
	RoomCheckIn   string         `gorm:"column:room_check_in;size:32" json:"room_check_in"`
	RoomCheckOut  string         `gorm:"column:room_check_out;size:32" json:"room_check_out"`
	ResCheckIn    string         `gorm:"column:res_check_in;size:32" json:"res_check_in"`
	ResCheckOut   string         `gorm:"column:res_check_out;size:32" json:"res_check_out"`
	ResStatus     string         `gorm:"column:res_status;size:32;index" json:"res_status"`
	Balance       float64        `gorm:"column:balance" json:"balance"`
	DateModified  string         `gorm:"column:date_modified;size:32" json:"date_modified"`
	Data          datatypes.JSON `gorm:"column:data" json:"-"`
	AccessCodeID  *string        `gorm:"column:access_code_id;size:128" json:"access_code_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName returns the table name for the Stay model.
func (Stay) TableName() string {
	return "room_stays"
}

// Key returns the composite stay key.
func Key(reservationID, roomID string) string {
	return reservationID + "_" + roomID
}

// HasCode reports whether the stay holds a provider code reference.
func (s Stay) HasCode() bool {
	return s.AccessCodeID != nil && *s.AccessCodeID != ""
}

// Code returns the code reference or "".
func (s Stay) Code() string {
	if s.AccessCodeID == nil {
		return ""
	}
	return *s.AccessCodeID
}

// FromReservation expands a reservation into one stay per room.
func FromReservation(r *cloudbeds.Reservation) []Stay {
	out := make([]Stay, 0, len(r.Rooms))
	for _, room := range r.Rooms {
		out = append(out, Stay{
			ID:            Key(string(r.ReservationID), string(room.RoomID)),
			ReservationID: string(r.ReservationID),
			RoomID:        string(room.RoomID),
			RoomName:      room.RoomName,
			GuestName:     r.GuestName,
			RoomStatus:    room.RoomStatus,
			RoomCheckIn:   room.CheckIn,
			RoomCheckOut:  room.CheckOut,
			ResCheckIn:    r.CheckIn,
			ResCheckOut:   r.CheckOut,
			ResStatus:     r.Status,
			Balance:       float64(r.Balance),
			DateModified:  r.DateModified,
			Data:          datatypes.JSON(r.Raw),
		})
	}
	return out
}
