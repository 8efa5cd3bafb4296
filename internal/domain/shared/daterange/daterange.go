package daterange

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: date must be YYYY-MM-DD or RFC3339")
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if NightsBetween(dr.CheckIn, dr.CheckOut) < 1 {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts started days in the range, see NightsBetween.
func (dr DateRange) Nights() int {
	return NightsBetween(dr.CheckIn, dr.CheckOut)
}

// NightsBetween returns ceil((checkOut - checkIn) / 1 day) at millisecond
// granularity, or 0 when checkOut is not after checkIn.
func NightsBetween(checkIn, checkOut time.Time) int {
	diff := checkOut.UnixMilli() - checkIn.UnixMilli()
	if diff <= 0 {
		return 0
	}
	return int((diff + dayMillis - 1) / dayMillis)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Intersect returns the overlapping part of two ranges.
func (dr DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !dr.Overlaps(other) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if other.CheckIn.After(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.Before(end) {
		end = other.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse accepts RFC3339 timestamps and plain YYYY-MM-DD dates as sent by
// transports.
func Parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}
