package property

import (
	"fmt"
	"time"
)

// Config holds the property's local time zone and access-code rules.
type Config struct {
	// Timezone is the IANA zone used for check-in/out clock times.
	Timezone string `mapstructure:"timezone" default:"America/St_Johns"`
	// CheckInTime is the local clock time a stay's code starts working (HH:MM).
	CheckInTime string `mapstructure:"check_in_time" default:"15:30"`
	// CheckOutTime is the local clock time a stay's code stops working (HH:MM).
	CheckOutTime string `mapstructure:"check_out_time" default:"11:30"`
	// ActiveStatuses lists the reservation statuses that should hold a code.
	ActiveStatuses []string `mapstructure:"active_statuses" default:"confirmed,checked_in"`
	// PinLength is the number of trailing reservation digits used as the PIN.
	PinLength int `mapstructure:"pin_length" default:"5"`
}

// Validate checks the zone, clock times and PIN length.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := ParseClock(c.CheckInTime); err != nil {
		return fmt.Errorf("check_in_time: %w", err)
	}
	if _, err := ParseClock(c.CheckOutTime); err != nil {
		return fmt.Errorf("check_out_time: %w", err)
	}
	if c.PinLength < MinPinLength || c.PinLength > MaxPinLength {
		return fmt.Errorf("pin_length must be between %d and %d, got %d", MinPinLength, MaxPinLength, c.PinLength)
	}
	if len(c.ActiveStatuses) == 0 {
		return fmt.Errorf("active_statuses must not be empty")
	}
	return nil
}
