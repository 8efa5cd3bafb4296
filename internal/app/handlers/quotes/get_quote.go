package quotes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/daterange"
)

const getQuoteKey = "quotes.get"

var ErrListingRequired = errors.New("quotes: listing id is required")

// GetQuoteQuery prices a stay at a listing. Validation problems are part of
// the returned quote, not errors.
type GetQuoteQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Adults    int
	Children  int
	Infants   int
	AllowPast bool
	// Location is the caller's time zone for the past-date check; UTC when nil.
	Location *time.Location
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

func (q GetQuoteQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

func (q GetQuoteQuery) stay() quote.StayRequest {
	return quote.StayRequest{
		PropertyID: strings.TrimSpace(q.ListingID),
		CheckIn:    q.CheckIn,
		CheckOut:   q.CheckOut,
		Guests:     quote.GuestCount{Adults: q.Adults, Children: q.Children, Infants: q.Infants},
		AllowPast:  q.AllowPast,
	}
}

type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
	Logger     *slog.Logger
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	if err := q.Validate(); err != nil {
		return dto.Quote{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(strings.TrimSpace(q.ListingID)))
	if err != nil {
		return dto.Quote{}, err
	}

	assembler := quote.NewAssembler(callerClock(h.Clock, q.Location))
	result := assembler.Assemble(q.stay(), listing.PricingProfile())

	available := false
	if result.Nights > 0 {
		calendar, err := unit.Availability().Calendar(execCtx, listing.ID)
		if err != nil {
			return dto.Quote{}, err
		}
		available = listing.Bookable() && calendar.CanReserve(daterange.DateRange{CheckIn: result.CheckIn, CheckOut: result.CheckOut})
	}

	if h.Logger != nil {
		h.Logger.Debug("quote assembled", "listing_id", listing.ID, "nights", result.Nights, "valid", result.IsValid, "available", available)
	}
	return dto.MapQuote(result, available), nil
}

// callerClock reads the time in the caller's zone so "today" is their date.
func callerClock(clock handlersupport.Clock, loc *time.Location) quote.Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return clock.Now().In(loc) }
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
