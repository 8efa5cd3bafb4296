package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

// Store keeps committed aggregates. Readers always get copies, so changes
// only become visible once a unit of work commits them.
type Store struct {
	mu        sync.RWMutex
	listings  map[domainlistings.ListingID]*domainlistings.Listing
	bookings  map[domainbooking.BookingID]*domainbooking.Booking
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewStore() *Store {
	return &Store{
		listings:  make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings:  make(map[domainbooking.BookingID]*domainbooking.Booking),
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

func (s *Store) listing(id domainlistings.ListingID) (*domainlistings.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, false
	}
	return cloneListing(l), true
}

func (s *Store) booking(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *Store) calendar(id domainlistings.ListingID) (*domainavailability.Calendar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calendars[id]
	if !ok {
		return nil, false
	}
	return cloneCalendar(c), true
}

func (s *Store) allListings() []*domainlistings.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, cloneListing(l))
	}
	return out
}

func (s *Store) allBookings() []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, cloneBooking(b))
	}
	return out
}

type changeSet struct {
	listings  map[domainlistings.ListingID]*domainlistings.Listing
	bookings  map[domainbooking.BookingID]*domainbooking.Booking
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

func newChangeSet() *changeSet {
	return &changeSet{
		listings:  make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings:  make(map[domainbooking.BookingID]*domainbooking.Booking),
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

func (s *Store) apply(cs *changeSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range cs.listings {
		s.listings[id] = l
	}
	for id, b := range cs.bookings {
		s.bookings[id] = b
	}
	for id, c := range cs.calendars {
		s.calendars[id] = c
	}
}

// SeedListing stores a listing outside of a unit of work; used by fixtures and tests.
func (s *Store) SeedListing(_ context.Context, l *domainlistings.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = cloneListing(l)
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.ClearEvents()
	c.Amenities = append([]string(nil), l.Amenities...)
	c.Photos = append([]string(nil), l.Photos...)
	return &c
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.ClearEvents()
	return &c
}

func cloneCalendar(cal *domainavailability.Calendar) *domainavailability.Calendar {
	c := *cal
	c.ClearEvents()
	c.Blocks = append([]domainavailability.Block(nil), cal.Blocks...)
	return &c
}

func sortBookings(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
