package property

import (
	"errors"
	"fmt"
	"strings"
	"time"

	// Embedded zone database so the property zone resolves on minimal images.
	_ "time/tzdata"
)

const (
	MinPinLength = 4
	MaxPinLength = 8

	dateLayout = "2006-01-02"
)

var ErrPinUnderivable = errors.New("not enough digits to derive a PIN")

// Clock is a local wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock time %q", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Window is the interval during which an access code is valid.
type Window struct {
	Start time.Time
	End   time.Time
}

// Elapsed reports whether the window has already closed at now.
func (w Window) Elapsed(now time.Time) bool {
	return !w.End.After(now)
}

// Equal reports whether both bounds denote the same instants.
func (w Window) Equal(o Window) bool {
	return w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// Rules applies a property's configuration to stays and reservations.
type Rules struct {
	loc      *time.Location
	checkIn  Clock
	checkOut Clock
	active   map[string]struct{}
	pinLen   int
}

// NewRules builds Rules from a validated configuration.
func NewRules(cfg Config) (*Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, _ := time.LoadLocation(cfg.Timezone)
	checkIn, _ := ParseClock(cfg.CheckInTime)
	checkOut, _ := ParseClock(cfg.CheckOutTime)

	active := make(map[string]struct{}, len(cfg.ActiveStatuses))
	for _, s := range cfg.ActiveStatuses {
		active[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	return &Rules{
		loc:      loc,
		checkIn:  checkIn,
		checkOut: checkOut,
		active:   active,
		pinLen:   cfg.PinLength,
	}, nil
}

// Location returns the property's time zone.
func (r *Rules) Location() *time.Location {
	return r.loc
}

// IsActive reports whether a reservation status should hold an access code.
func (r *Rules) IsActive(status string) bool {
	_, ok := r.active[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// ActiveStatuses returns the configured active statuses.
func (r *Rules) ActiveStatuses() []string {
	out := make([]string, 0, len(r.active))
	for s := range r.active {
		out = append(out, s)
	}
	return out
}

// StayWindow returns the code window for a check-in/check-out date pair,
// using the property's fixed check-in and check-out clock times.
func (r *Rules) StayWindow(checkIn, checkOut string) (Window, error) {
	return r.DayWindow(checkIn, checkOut, r.checkIn, r.checkOut)
}

// DayWindow anchors two dates at the given local clock times.
func (r *Rules) DayWindow(startDate, endDate string, startClock, endClock Clock) (Window, error) {
	start, err := r.At(startDate, startClock)
	if err != nil {
		return Window{}, err
	}
	end, err := r.At(endDate, endClock)
	if err != nil {
		return Window{}, err
	}
	if !end.After(start) {
		return Window{}, fmt.Errorf("window end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// At returns date (YYYY-MM-DD, or a timestamp whose date part is used) at clock in the property zone.
func (r *Rules) At(date string, clock Clock) (time.Time, error) {
	d := strings.TrimSpace(date)
	if len(d) > len(dateLayout) {
		d = d[:len(dateLayout)]
	}
	day, err := time.ParseInLocation(dateLayout, d, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour, clock.Minute, 0, 0, r.loc), nil
}

// Today returns the current date in the property zone.
func (r *Rules) Today(now time.Time) time.Time {
	n := now.In(r.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, r.loc)
}

// DerivePIN returns the trailing PinLength digits of a reservation identifier.
func (r *Rules) DerivePIN(reservationID string) (string, error) {
	return DerivePIN(reservationID, r.pinLen)
}

// DerivePIN returns the last n digits of id, ignoring non-digit characters.
func DerivePIN(id string, n int) (string, error) {
	digits := make([]rune, 0, len(id))
	for _, ch := range id {
		if ch >= '0' && ch <= '9' {
			digits = append(digits, ch)
		}
	}
	if len(digits) < n {
		return "", fmt.Errorf("%w: %q", ErrPinUnderivable, id)
	}
	return string(digits[len(digits)-n:]), nil
}
