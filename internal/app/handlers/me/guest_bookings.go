package me

import (
	"context"
	"log/slog"
	"sort"

	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
)

const listGuestBookingsKey = "me.bookings.list"

type ListGuestBookingsQuery struct {
	Session auth.Session
}

func (q ListGuestBookingsQuery) Key() string             { return listGuestBookingsKey }
func (q ListGuestBookingsQuery) Actor() auth.Session     { return q.Session }
func (q ListGuestBookingsQuery) RequiredRole() auth.Role { return "" }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Booking().ListByGuest(execCtx, q.Session.UserID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	listingCache := make(map[domainlistings.ListingID]*domainlistings.Listing)
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		listing, err := loadListing(execCtx, unit.Listings(), b.ListingID, listingCache)
		if err != nil && h.Logger != nil {
			h.Logger.Warn("listing snapshot missing for booking", "booking_id", b.ID, "listing_id", b.ListingID, "error", err)
		}
		items = append(items, dto.MapBookingSummary(b, listing, false))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CheckIn.Before(items[j].CheckIn)
	})

	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "guest_id", q.Session.UserID, "count", len(items))
	}
	return dto.BookingCollection{Items: items}, nil
}

func loadListing(
	ctx context.Context,
	repo domainlistings.ListingRepository,
	id domainlistings.ListingID,
	cache map[domainlistings.ListingID]*domainlistings.Listing,
) (*domainlistings.Listing, error) {
	if listing, ok := cache[id]; ok {
		return listing, nil
	}
	listing, err := repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = listing
	return listing, nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
