package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

const (
	hostStatsKey      = "host.stats"
	defaultStatsDays  = 30
	maxStatsWindowDay = 366
)

// HostStatsQuery reports occupancy and revenue per listing over [From, To).
// A zero window means the next 30 days.
type HostStatsQuery struct {
	Session auth.Session
	From    time.Time
	To      time.Time
}

func (q HostStatsQuery) Key() string             { return hostStatsKey }
func (q HostStatsQuery) Actor() auth.Session     { return q.Session }
func (q HostStatsQuery) RequiredRole() auth.Role { return auth.RoleHost }

type HostStatsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
	Logger     *slog.Logger
}

func (h *HostStatsHandler) Handle(ctx context.Context, q HostStatsQuery) (dto.HostStats, error) {
	window, err := h.window(q)
	if err != nil {
		return dto.HostStats{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostStats{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	hostListings, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Host:  domainlistings.HostID(q.Session.UserID),
		Limit: defaultHostListLimit,
	})
	if err != nil {
		return dto.HostStats{}, err
	}

	out := dto.HostStats{HostID: q.Session.UserID, From: window.CheckIn, To: window.CheckOut, Listings: []dto.ListingStats{}}
	windowNights := window.Nights()
	for _, listing := range hostListings.Items {
		bookings, err := unit.Booking().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.HostStats{}, err
		}
		out.Listings = append(out.Listings, listingStats(listing, bookings, window, windowNights))
	}

	if h.Logger != nil {
		h.Logger.Debug("host stats computed", "host_id", q.Session.UserID, "listings", len(out.Listings))
	}
	return out, nil
}

func (h *HostStatsHandler) window(q HostStatsQuery) (daterange.DateRange, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = daterange.Day(h.Clock.Now())
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, defaultStatsDays)
	}
	if to.Sub(from) > maxStatsWindowDay*24*time.Hour {
		to = from.AddDate(0, 0, maxStatsWindowDay)
	}
	return daterange.New(from, to)
}

// listingStats prorates each confirmed booking's snapshot total by the share
// of its nights that fall inside window.
func listingStats(listing *domainlistings.Listing, bookings []*domainbooking.Booking, window daterange.DateRange, windowNights int) dto.ListingStats {
	revenue := decimal.Zero
	booked := 0
	pending := 0
	for _, b := range bookings {
		if b.State == domainbooking.StatePending {
			pending++
			continue
		}
		if !b.Occupies() {
			continue
		}
		part, ok := b.Range.Intersect(window)
		if !ok {
			continue
		}
		nights := part.Nights()
		booked += nights
		if b.Price.Nights > 0 {
			share := decimal.NewFromInt(int64(nights)).Div(decimal.NewFromInt(int64(b.Price.Nights)))
			revenue = revenue.Add(b.Price.Total.Decimal().Mul(share))
		}
	}
	rate := 0.0
	if windowNights > 0 {
		rate, _ = decimal.NewFromInt(int64(booked)).Div(decimal.NewFromInt(int64(windowNights))).Round(4).Float64()
	}
	total, err := money.FromDecimal(revenue, listing.Currency)
	if err != nil {
		total = money.Money{Currency: listing.Currency}
	}
	return dto.ListingStats{
		ListingID:       string(listing.ID),
		Title:           listing.Title,
		BookedNights:    booked,
		AvailableNights: windowNights - booked,
		OccupancyRate:   rate,
		Revenue:         dto.MapMoney(total),
		PendingCount:    pending,
	}
}

var _ queries.Handler[HostStatsQuery, dto.HostStats] = (*HostStatsHandler)(nil)
