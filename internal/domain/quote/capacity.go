package quote

import "fmt"

const (
	MsgNegativeGuests   = "Guest counts cannot be negative."
	MsgAdultRequired    = "At least one adult guest is required."
	msgCapacityExceeded = "This property accommodates a maximum of %d guests."
)

// CapacityExceededMessage renders the over-capacity message for maxGuests.
func CapacityExceededMessage(maxGuests int) string {
	return fmt.Sprintf(msgCapacityExceeded, maxGuests)
}

// CheckCapacity validates the party against the property's guest ceiling.
// Occupancy exactly at maxGuests is allowed.
func CheckCapacity(guests GuestCount, maxGuests int) []string {
	var errs []string
	if guests.Adults < 0 || guests.Children < 0 || guests.Infants < 0 {
		errs = append(errs, MsgNegativeGuests)
	}
	if guests.Countable() > maxGuests {
		errs = append(errs, CapacityExceededMessage(maxGuests))
	}
	if guests.Adults < 1 {
		errs = append(errs, MsgAdultRequired)
	}
	return errs
}
