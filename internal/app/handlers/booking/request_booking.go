package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	Session         auth.Session
	ListingID       string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          quote.GuestCount
	IdempotencyKeyV string
	Location        *time.Location
}

func (c RequestBookingCommand) Key() string             { return requestBookingKey }
func (c RequestBookingCommand) IdempotencyKey() string  { return c.IdempotencyKeyV }
func (c RequestBookingCommand) ResultPrototype() any    { return &dto.BookingResult{} }
func (c RequestBookingCommand) Actor() auth.Session     { return c.Session }
func (c RequestBookingCommand) RequiredRole() auth.Role { return auth.RoleGuest }

func (c RequestBookingCommand) Validate() error {
	if strings.TrimSpace(c.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

type RequestBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   handlersupport.Clock
	NewID   func() string
	Logger  *slog.Logger
}

// Handle assembles a fresh quote and stores a PENDING booking with its
// price snapshot. Invalid quotes are rejected with every message.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (dto.BookingResult, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return dto.BookingResult{}, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(strings.TrimSpace(cmd.ListingID)))
	if err != nil {
		return dto.BookingResult{}, err
	}
	if !listing.Bookable() {
		return dto.BookingResult{}, domainbooking.ErrListingUnavailable
	}
	if string(listing.Host) == cmd.Session.UserID {
		return dto.BookingResult{}, domainbooking.ErrForbidden
	}

	now := h.Clock.Now()
	loc := cmd.Location
	if loc == nil {
		loc = time.UTC
	}
	profile := listing.PricingProfile()
	q := quote.NewAssembler(func() time.Time { return now.In(loc) }).Assemble(quote.StayRequest{
		PropertyID: string(listing.ID),
		CheckIn:    cmd.CheckIn,
		CheckOut:   cmd.CheckOut,
		Guests:     cmd.Guests,
	}, profile)
	if !q.IsValid {
		return dto.BookingResult{}, &domainbooking.QuoteRejectedError{Reasons: q.Errors()}
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return dto.BookingResult{}, err
	}
	if !calendar.CanReserve(daterange.DateRange{CheckIn: q.CheckIn, CheckOut: q.CheckOut}) {
		return dto.BookingResult{}, domainbooking.ErrDatesUnavailable
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(h.newID()),
		ListingID: listing.ID,
		HostID:    listing.Host,
		GuestID:   cmd.Session.UserID,
		Quote:     q,
		Profile:   profile,
		CreatedAt: now,
	})
	if err != nil {
		return dto.BookingResult{}, err
	}
	if err := unit.Booking().Save(ctx, booking); err != nil {
		return dto.BookingResult{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.BookingResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", booking.ID, "listing_id", listing.ID, "guest_id", booking.GuestID, "total", booking.Price.Total.String())
	}
	return dto.MapBookingResult(booking), nil
}

func (h *RequestBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[RequestBookingCommand, dto.BookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
var _ middleware.Restricted = RequestBookingCommand{}
