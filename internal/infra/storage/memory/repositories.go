package memory

import (
	"context"
	"sort"

	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

// listingRepository reads through the unit's pending changes to the store.
type listingRepository struct {
	store   *Store
	pending *changeSet
}

func (r listingRepository) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if l, ok := r.pending.listings[id]; ok {
		return cloneListing(l), nil
	}
	if l, ok := r.store.listing(id); ok {
		return l, nil
	}
	return nil, domainlistings.ErrNotFound
}

func (r listingRepository) Save(_ context.Context, listing *domainlistings.Listing) error {
	listing.Version++
	r.pending.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r listingRepository) Search(_ context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	merged := make(map[domainlistings.ListingID]*domainlistings.Listing)
	for _, l := range r.store.allListings() {
		merged[l.ID] = l
	}
	for id, l := range r.pending.listings {
		merged[id] = cloneListing(l)
	}
	matches := make([]*domainlistings.Listing, 0, len(merged))
	for _, l := range merged {
		if params.Matches(l) {
			matches = append(matches, l)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NightlyRateCents == matches[j].NightlyRateCents {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].NightlyRateCents < matches[j].NightlyRateCents
	})
	total := len(matches)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)
	return domainlistings.SearchResult{Items: matches[start:end], Total: total}, nil
}

type bookingRepository struct {
	store   *Store
	pending *changeSet
}

func (r bookingRepository) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if b, ok := r.pending.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	if b, ok := r.store.booking(id); ok {
		return b, nil
	}
	return nil, domainbooking.ErrBookingNotFound
}

func (r bookingRepository) Save(_ context.Context, booking *domainbooking.Booking) error {
	booking.Version++
	r.pending.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r bookingRepository) ListByGuest(_ context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.GuestID == guestID }), nil
}

func (r bookingRepository) ListByListing(_ context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.ListingID == listingID }), nil
}

func (r bookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	merged := make(map[domainbooking.BookingID]*domainbooking.Booking)
	for _, b := range r.store.allBookings() {
		merged[b.ID] = b
	}
	for id, b := range r.pending.bookings {
		merged[id] = cloneBooking(b)
	}
	out := make([]*domainbooking.Booking, 0)
	for _, b := range merged {
		if keep(b) {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

type availabilityRepository struct {
	store   *Store
	pending *changeSet
}

// Calendar returns an empty calendar for listings that have none yet.
func (r availabilityRepository) Calendar(_ context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	if c, ok := r.pending.calendars[id]; ok {
		return cloneCalendar(c), nil
	}
	if c, ok := r.store.calendar(id); ok {
		return c, nil
	}
	return domainavailability.NewCalendar(id), nil
}

func (r availabilityRepository) Save(_ context.Context, calendar *domainavailability.Calendar) error {
	calendar.Version++
	r.pending.calendars[calendar.ListingID] = cloneCalendar(calendar)
	return nil
}

var (
	_ domainlistings.ListingRepository = listingRepository{}
	_ domainbooking.Repository         = bookingRepository{}
	_ domainavailability.Repository    = availabilityRepository{}
)
