package dto

import (
	"github.com/shopspring/decimal"

	domainlistings "stayhub/internal/domain/listings"
)

type ListingPricing struct {
	ListingID      string   `json:"listing_id"`
	Currency       string   `json:"currency"`
	NightlyRate    MoneyDTO `json:"nightly_rate"`
	CleaningFee    MoneyDTO `json:"cleaning_fee"`
	ServiceFeeRate string   `json:"service_fee_rate"`
	TaxRate        string   `json:"tax_rate"`
	MaxGuests      int      `json:"max_guests"`
}

type ListingCard struct {
	ID           string         `json:"id"`
	HostID       string         `json:"host_id"`
	Title        string         `json:"title"`
	PropertyType string         `json:"property_type"`
	City         string         `json:"city"`
	Country      string         `json:"country"`
	Amenities    []string       `json:"amenities"`
	Photos       []string       `json:"photos"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Rating       float64        `json:"rating"`
	State        string         `json:"state"`
	Pricing      ListingPricing `json:"pricing"`
}

type ListingCatalog struct {
	Items  []ListingCard `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func MapListingPricing(l *domainlistings.Listing) ListingPricing {
	profile := l.PricingProfile()
	return ListingPricing{
		ListingID:      string(l.ID),
		Currency:       l.Currency,
		NightlyRate:    MapDecimal(profile.NightlyRate, l.Currency),
		CleaningFee:    MapDecimal(profile.CleaningFee, l.Currency),
		ServiceFeeRate: rateString(profile.ServiceFeeRate),
		TaxRate:        rateString(profile.TaxRate),
		MaxGuests:      l.GuestsLimit,
	}
}

func MapListingCard(l *domainlistings.Listing) ListingCard {
	return ListingCard{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		PropertyType: l.PropertyType,
		City:         l.Address.City,
		Country:      l.Address.Country,
		Amenities:    nonNil(l.Amenities),
		Photos:       nonNil(l.Photos),
		ThumbnailURL: l.ThumbnailURL,
		Rating:       l.Rating,
		State:        string(l.State),
		Pricing:      MapListingPricing(l),
	}
}

func rateString(rate decimal.Decimal) string {
	return rate.String()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
