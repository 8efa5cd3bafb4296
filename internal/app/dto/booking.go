package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

type BookingListingSnapshot struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type BookingPrice struct {
	Nights      int      `json:"nights"`
	Nightly     MoneyDTO `json:"nightly"`
	Base        MoneyDTO `json:"base_subtotal"`
	CleaningFee MoneyDTO `json:"cleaning_fee"`
	ServiceFee  MoneyDTO `json:"service_fee"`
	Tax         MoneyDTO `json:"taxes"`
	Total       MoneyDTO `json:"total"`
}

type BookingSummary struct {
	ID        string                 `json:"id"`
	Listing   BookingListingSnapshot `json:"listing"`
	GuestID   string                 `json:"guest_id,omitempty"`
	CheckIn   time.Time              `json:"check_in"`
	CheckOut  time.Time              `json:"check_out"`
	Guests    GuestsDTO              `json:"guests"`
	Status    string                 `json:"status"`
	Price     BookingPrice           `json:"price"`
	CreatedAt time.Time              `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

// BookingResult is returned by booking commands.
type BookingResult struct {
	BookingID string   `json:"booking_id"`
	Status    string   `json:"status"`
	Total     MoneyDTO `json:"total"`
}

func MapBookingResult(b *domainbooking.Booking) BookingResult {
	return BookingResult{BookingID: string(b.ID), Status: string(b.State), Total: MapMoney(b.Price.Total)}
}

func MapBookingSummary(b *domainbooking.Booking, listing *domainlistings.Listing, includeGuest bool) BookingSummary {
	snapshot := BookingListingSnapshot{ID: string(b.ListingID)}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.City = listing.Address.City
		snapshot.Country = listing.Address.Country
		snapshot.ThumbnailURL = listing.ThumbnailURL
	}
	out := BookingSummary{
		ID:       string(b.ID),
		Listing:  snapshot,
		CheckIn:  b.Range.CheckIn,
		CheckOut: b.Range.CheckOut,
		Guests:   MapGuests(b.Guests),
		Status:   string(b.State),
		Price: BookingPrice{
			Nights:      b.Price.Nights,
			Nightly:     MapMoney(b.Price.Nightly),
			Base:        MapMoney(b.Price.Base),
			CleaningFee: MapMoney(b.Price.CleaningFee),
			ServiceFee:  MapMoney(b.Price.ServiceFee),
			Tax:         MapMoney(b.Price.Tax),
			Total:       MapMoney(b.Price.Total),
		},
		CreatedAt: b.CreatedAt,
	}
	if includeGuest {
		out.GuestID = b.GuestID
	}
	return out
}
