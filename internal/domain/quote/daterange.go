package quote

import (
	"time"

	"stayhub/internal/domain/shared/daterange"
)

const (
	MsgCheckoutNotAfterCheckIn = "Checkout date must be after check-in date."
	MsgCheckInInPast           = "Check-in date cannot be in the past."
)

// DateOptions controls the date checks. Now carries the caller's local time;
// a zero Now disables the past-date check.
type DateOptions struct {
	Now       time.Time
	AllowPast bool
}

// DateCheck is the outcome of ValidateDates. Nights is zero when the range is empty.
type DateCheck struct {
	Nights int
	Errors []string
}

// ValidateDates checks range coherence and counts nights, rounding partial days up.
func ValidateDates(checkIn, checkOut time.Time, opts DateOptions) DateCheck {
	var check DateCheck
	nights := daterange.NightsBetween(checkIn, checkOut)
	if nights < 1 {
		check.Errors = append(check.Errors, MsgCheckoutNotAfterCheckIn)
	} else {
		check.Nights = nights
	}
	if !opts.AllowPast && !opts.Now.IsZero() && beforeToday(checkIn, opts.Now) {
		check.Errors = append(check.Errors, MsgCheckInInPast)
	}
	return check
}

// beforeToday compares calendar dates: checkIn's own date against the
// caller's local date.
func beforeToday(checkIn, now time.Time) bool {
	return daterange.Day(checkIn).Before(daterange.Day(now))
}
