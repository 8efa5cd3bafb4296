package listings

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingCreatedEvent struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingActivatedEvent struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingActivatedEvent) EventName() string     { return "listing.activated" }
func (e ListingActivatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingActivatedEvent) OccurredAt() time.Time { return e.At }

type ListingSuspendedEvent struct {
	ListingID ListingID
	Reason    string
	At        time.Time
}

func (e ListingSuspendedEvent) EventName() string     { return "listing.suspended" }
func (e ListingSuspendedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingSuspendedEvent) OccurredAt() time.Time { return e.At }

type ListingPricingChangedEvent struct {
	ListingID        ListingID       `json:"listing_id"`
	Currency         string          `json:"currency"`
	NightlyRateCents int64           `json:"nightly_rate_cents"`
	CleaningFeeCents int64           `json:"cleaning_fee_cents"`
	ServiceFeeRate   decimal.Decimal `json:"service_fee_rate"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	GuestsLimit      int             `json:"guests_limit"`
	At               time.Time       `json:"at"`
}

func (e ListingPricingChangedEvent) EventName() string     { return "listing.pricing_changed" }
func (e ListingPricingChangedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingPricingChangedEvent) OccurredAt() time.Time { return e.At }
