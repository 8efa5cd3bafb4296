package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
)

var (
	ErrInvalidGuests       = errors.New("booking: at least one adult guest is required")
	ErrInvalidState        = errors.New("booking: invalid state transition")
	ErrPaymentHoldRequired = errors.New("booking: payment hold required before confirmation")
	ErrBookingNotFound     = errors.New("booking: not found")
	ErrDatesUnavailable    = errors.New("booking: dates are not available")
	ErrListingUnavailable  = errors.New("booking: listing is not accepting bookings")
	ErrForbidden           = errors.New("booking: not allowed")
)

// QuoteRejectedError carries every validation message of a quote that
// could not be turned into a booking.
type QuoteRejectedError struct {
	Reasons []string
}

func (e *QuoteRejectedError) Error() string {
	return "booking: quote rejected: " + strings.Join(e.Reasons, "; ")
}

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateDeclined  BookingState = "DECLINED"
	StateCancelled BookingState = "CANCELLED"
)

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	HostID      listings.HostID
	GuestID     string
	Range       daterange.DateRange
	Guests      quote.GuestCount
	Price       pricing.PriceBreakdown
	State       BookingState
	PaymentHold string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	HostID    listings.HostID
	GuestID   string
	Quote     quote.BookingQuote
	Profile   quote.PricingProfile
	CreatedAt time.Time
}

// NewBooking turns a validated quote into a pending booking. An invalid
// quote yields a *QuoteRejectedError with all of its messages.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, errors.New("booking: guest id required")
	}
	if !params.Quote.IsValid {
		return nil, &QuoteRejectedError{Reasons: params.Quote.Errors()}
	}
	if params.Quote.Guests.Adults < 1 {
		return nil, ErrInvalidGuests
	}
	dr, err := daterange.New(params.Quote.CheckIn, params.Quote.CheckOut)
	if err != nil {
		return nil, err
	}
	price, err := pricing.FromQuote(params.Quote, params.Profile)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		HostID:    params.HostID,
		GuestID:   params.GuestID,
		Range:     dr,
		Guests:    params.Quote.Guests,
		Price:     price,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		CheckIn:    dr.CheckIn,
		CheckOut:   dr.CheckOut,
		Guests:     b.Guests,
		TotalCents: price.Total.Amount,
		Currency:   price.Total.Currency,
		At:         now,
	})
	return b, nil
}

func (b *Booking) Decline(reason string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Confirm(paymentHoldID string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	if b.Price.Total.Amount > 0 && paymentHoldID == "" {
		return ErrPaymentHoldRequired
	}
	b.PaymentHold = paymentHoldID
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		TotalCents: b.Price.Total.Amount,
		Currency:   b.Price.Total.Currency,
		At:         b.UpdatedAt,
	})
	return nil
}

// Cancel moves a pending or confirmed booking to CANCELLED and returns the
// payment hold that has to be released, if any.
func (b *Booking) Cancel(reason string, now time.Time) (string, error) {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return "", ErrInvalidState
	}
	hold := b.PaymentHold
	wasConfirmed := b.State == StateConfirmed
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, WasConfirmed: wasConfirmed, Reason: reason, At: b.UpdatedAt})
	return hold, nil
}

// Occupies reports whether the booking holds its dates on the calendar.
func (b *Booking) Occupies() bool {
	return b.State == StateConfirmed
}
