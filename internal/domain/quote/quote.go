// Package quote turns a stay request and a property's pricing profile into a
// priced, validated booking quote. Everything here is pure: no I/O, no shared
// state, and the only notion of "now" is the clock handed to the Assembler.
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuestCount is the party size as entered on the booking form.
type GuestCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Countable is the occupancy checked against a property's guest ceiling.
// Infants do not count.
func (g GuestCount) Countable() int {
	return g.Adults + g.Children
}

// StayRequest describes a prospective stay.
type StayRequest struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     GuestCount
	// AllowPast permits check-in dates before today, e.g. when re-pricing past trips.
	AllowPast bool
}

// PricingProfile is the read-only pricing data of a property. Rates are
// fractions (0.10 means 10%).
type PricingProfile struct {
	Currency       string
	NightlyRate    decimal.Decimal
	CleaningFee    decimal.Decimal
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
	MaxGuests      int
}

// BookingQuote is the immutable result of Assemble. Price holds exact
// decimals; use Price.Rounded() for display.
type BookingQuote struct {
	PropertyID       string
	CheckIn          time.Time
	CheckOut         time.Time
	Guests           GuestCount
	Currency         string
	Nights           int
	Price            PriceBreakdown
	IsValid          bool
	ValidationErrors []string
}

// Errors returns a copy of the validation messages.
func (q BookingQuote) Errors() []string {
	out := make([]string, len(q.ValidationErrors))
	copy(out, q.ValidationErrors)
	return out
}
