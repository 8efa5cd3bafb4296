package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/events"
)

var (
	ErrNotFound        = errors.New("listings: not found")
	ErrGuestsLimit     = errors.New("listings: guests limit must be at least 1")
	ErrInvalidState    = errors.New("listings: invalid state transition")
	ErrAddressRequired = errors.New("listings: address must be provided when activating")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrNightlyRate     = errors.New("listings: nightly rate must be non-negative")
	ErrCleaningFee     = errors.New("listings: cleaning fee must be non-negative")
	ErrFeeRate         = errors.New("listings: fee and tax rates must be non-negative")
	ErrCurrency        = errors.New("listings: currency must be a 3-letter code")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

type Address struct {
	Line1   string
	Line2   string
	City    string
	Country string
	Lat     float64
	Lon     float64
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Pricing is the part of a listing the quote calculator reads.
type Pricing struct {
	Currency         string
	NightlyRateCents int64
	CleaningFeeCents int64
	// ServiceFeeRate and TaxRate are exact fractions: 0.1 is 10%.
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
	GuestsLimit    int
}

func (p Pricing) normalized() Pricing {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	return p
}

func (p Pricing) Validate() error {
	if len(p.Currency) != 3 {
		return ErrCurrency
	}
	if p.GuestsLimit < 1 {
		return ErrGuestsLimit
	}
	if p.NightlyRateCents < 0 {
		return ErrNightlyRate
	}
	if p.CleaningFeeCents < 0 {
		return ErrCleaningFee
	}
	if p.ServiceFeeRate.IsNegative() || p.TaxRate.IsNegative() {
		return ErrFeeRate
	}
	return nil
}

// Equal compares rates by value, so 0.1 and 0.10 are the same profile.
func (p Pricing) Equal(o Pricing) bool {
	return p.Currency == o.Currency &&
		p.NightlyRateCents == o.NightlyRateCents &&
		p.CleaningFeeCents == o.CleaningFeeCents &&
		p.ServiceFeeRate.Equal(o.ServiceFeeRate) &&
		p.TaxRate.Equal(o.TaxRate) &&
		p.GuestsLimit == o.GuestsLimit
}

type Listing struct {
	ID                   ListingID
	Host                 HostID
	Title                string
	Description          string
	PropertyType         string
	Address              Address
	Amenities            []string
	Photos               []string
	CancellationPolicyID string
	State                ListingState
	ThumbnailURL         string
	Rating               float64
	Pricing
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateListingParams struct {
	ID                   ListingID
	Host                 HostID
	Title                string
	Description          string
	PropertyType         string
	Address              Address
	Amenities            []string
	Photos               []string
	CancellationPolicyID string
	ThumbnailURL         string
	Rating               float64
	Pricing              Pricing
	Now                  time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listings: host is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	pricing := params.Pricing.normalized()
	if err := pricing.Validate(); err != nil {
		return nil, err
	}

	listing := &Listing{
		ID:                   params.ID,
		Host:                 params.Host,
		Title:                strings.TrimSpace(params.Title),
		Description:          strings.TrimSpace(params.Description),
		PropertyType:         strings.TrimSpace(params.PropertyType),
		Address:              params.Address,
		Amenities:            append([]string(nil), params.Amenities...),
		Photos:               append([]string(nil), params.Photos...),
		CancellationPolicyID: strings.TrimSpace(params.CancellationPolicyID),
		State:                ListingDraft,
		ThumbnailURL:         strings.TrimSpace(params.ThumbnailURL),
		Rating:               params.Rating,
		Pricing:              pricing,
		CreatedAt:            params.Now.UTC(),
		UpdatedAt:            params.Now.UTC(),
	}

	listing.Record(newListingCreatedEvent(listing.ID, listing.Host, listing.CreatedAt))
	return listing, nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if !l.Address.Valid() {
		return ErrAddressRequired
	}
	if err := l.Pricing.Validate(); err != nil {
		return err
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(newListingActivatedEvent(l.ID, l.Host, l.UpdatedAt))
	return nil
}

func (l *Listing) Suspend(now time.Time, reason string) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(newListingSuspendedEvent(l.ID, reason, l.UpdatedAt))
	return nil
}

// UpdatePricing replaces the pricing profile. Existing bookings keep the
// snapshot taken when they were requested.
func (l *Listing) UpdatePricing(p Pricing, now time.Time) error {
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return err
	}
	l.Pricing = p
	l.UpdatedAt = now.UTC()
	l.Record(newListingPricingChangedEvent(l.ID, p, l.UpdatedAt))
	return nil
}

// PricingProfile converts stored cents into the exact decimal profile used
// for quoting. Rates are passed through unrounded.
func (l *Listing) PricingProfile() quote.PricingProfile {
	return quote.PricingProfile{
		Currency:       l.Currency,
		NightlyRate:    decimal.New(l.NightlyRateCents, -2),
		CleaningFee:    decimal.New(l.CleaningFeeCents, -2),
		ServiceFeeRate: l.ServiceFeeRate,
		TaxRate:        l.TaxRate,
		MaxGuests:      l.GuestsLimit,
	}
}

// NormalizeRate turns an external rate into a fraction without rounding.
// Values up to 1 are fractions (0.1), larger values are percentages (10).
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Shift(-2)
	}
	return rate
}

func (l *Listing) Bookable() bool {
	return l.State == ListingActive
}

func newListingCreatedEvent(id ListingID, host HostID, at time.Time) events.DomainEvent {
	return ListingCreatedEvent{ListingID: id, HostID: host, At: at}
}

func newListingActivatedEvent(id ListingID, host HostID, at time.Time) events.DomainEvent {
	return ListingActivatedEvent{ListingID: id, HostID: host, At: at}
}

func newListingSuspendedEvent(id ListingID, reason string, at time.Time) events.DomainEvent {
	return ListingSuspendedEvent{ListingID: id, Reason: reason, At: at}
}

func newListingPricingChangedEvent(id ListingID, p Pricing, at time.Time) events.DomainEvent {
	return ListingPricingChangedEvent{
		ListingID:        id,
		Currency:         p.Currency,
		NightlyRateCents: p.NightlyRateCents,
		CleaningFeeCents: p.CleaningFeeCents,
		ServiceFeeRate:   p.ServiceFeeRate,
		TaxRate:          p.TaxRate,
		GuestsLimit:      p.GuestsLimit,
		At:               at,
	}
}
