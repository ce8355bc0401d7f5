package cloudbeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"access-sync/core/utils"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedRecord marks a source record missing a required field.
var ErrMalformedRecord = errors.New("cloudbeds: malformed record")

// ID is an identifier the source sends either as a string or as a number.
type ID string

// UnmarshalJSON accepts quoted and bare identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*id = ID(strings.TrimSpace(utils.ToString(v)))
	return nil
}

// Amount is a monetary value the source sends either as a number or as a string.
type Amount float64

// UnmarshalJSON accepts quoted and bare numbers.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Amount(utils.ToFloat(v))
	return nil
}

// Summary is one row of the reservation listing.
type Summary struct {
	ReservationID ID     `json:"reservationID" validate:"required"`
	Status        string `json:"status"`
}

// Room is one room assignment inside a reservation.
type Room struct {
	RoomID     ID     `json:"roomID" validate:"required"`
	RoomName   string `json:"roomName"`
	RoomStatus string `json:"roomStatus" validate:"required"`
	CheckIn    string `json:"roomCheckIn" validate:"required,isodate"`
	CheckOut   string `json:"roomCheckOut" validate:"required,isodate"`
}

// Reservation is a reservation with its room assignments.
type Reservation struct {
	ReservationID ID     `json:"reservationID" validate:"required"`
	GuestName     string `json:"guestName" validate:"required"`
	Status        string `json:"status" validate:"required"`
	CheckIn       string `json:"reservationCheckIn" validate:"required,isodate"`
	CheckOut      string `json:"reservationCheckOut" validate:"required,isodate"`
	Balance       Amount `json:"balance"`
	DateModified  string `json:"dateModified" validate:"required"`
	Rooms         []Room `json:"rooms" validate:"dive"`

	// Raw is the record exactly as received.
	Raw json.RawMessage `json:"-"`
}

// BlockRoom names a room held by a room block.
type BlockRoom struct {
	RoomID ID `json:"roomID" validate:"required"`
}

// BlockCreated is the notification sent when a room block is created.
type BlockCreated struct {
	RoomBlockID     ID          `json:"roomBlockID" validate:"required"`
	RoomBlockType   string      `json:"roomBlockType"`
	RoomBlockReason string      `json:"roomBlockReason"`
	StartDate       string      `json:"startDate" validate:"required,isodate"`
	EndDate         string      `json:"endDate" validate:"required,isodate"`
	Rooms           []BlockRoom `json:"rooms" validate:"required,min=1,dive"`
}

// BlockDeleted is the notification sent when a room block is removed.
type BlockDeleted struct {
	RoomBlockID ID `json:"roomBlockID" validate:"required"`
}

// RoomBlockUpdate annotates an existing room block.
type RoomBlockUpdate struct {
	PropertyID  string `json:"propertyID"`
	RoomBlockID string `json:"roomBlockID"`
	Reason      string `json:"roomBlockReason"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// isodate accepts YYYY-MM-DD, alone or as the prefix of a timestamp.
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if len(s) < len(time.DateOnly) {
			return false
		}
		_, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
		return err == nil
	})
	return v
}

// Validate checks v's required fields, wrapping failures in ErrMalformedRecord.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrMalformedRecord, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
}

// ParseReservation decodes and validates a single reservation record.
func ParseReservation(raw json.RawMessage) (*Reservation, error) {
	var r Reservation
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := Validate(&r); err != nil {
		if r.ReservationID != "" {
			return nil, fmt.Errorf("reservation %s: %w", r.ReservationID, err)
		}
		return nil, err
	}
	r.Raw = raw
	return &r, nil
}
