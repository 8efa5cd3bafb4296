package booking

import (
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/quote"
)

type BookingRequested struct {
	BookingID  BookingID          `json:"booking_id"`
	ListingID  listings.ListingID `json:"listing_id"`
	GuestID    string             `json:"guest_id"`
	CheckIn    time.Time          `json:"check_in"`
	CheckOut   time.Time          `json:"check_out"`
	Guests     quote.GuestCount   `json:"guests"`
	TotalCents int64              `json:"total_cents"`
	Currency   string             `json:"currency"`
	At         time.Time          `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingDeclined struct {
	BookingID BookingID `json:"booking_id"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID          `json:"booking_id"`
	ListingID  listings.ListingID `json:"listing_id"`
	CheckIn    time.Time          `json:"check_in"`
	CheckOut   time.Time          `json:"check_out"`
	TotalCents int64              `json:"total_cents"`
	Currency   string             `json:"currency"`
	At         time.Time          `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID    BookingID          `json:"booking_id"`
	ListingID    listings.ListingID `json:"listing_id"`
	WasConfirmed bool               `json:"was_confirmed"`
	Reason       string             `json:"reason,omitempty"`
	At           time.Time          `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
