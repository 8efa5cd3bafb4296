package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"stayhub/internal/app/commands"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	domainlistings "stayhub/internal/domain/listings"
)

const syncListingKey = "listings.sync"

var ErrSnapshotIncomplete = errors.New("listings: snapshot id and host are required")

// PricingDefaults fill rates the property data service leaves out.
type PricingDefaults struct {
	Currency       string
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
}

// ListingSnapshot is a property record as published by the property data
// service. Amenities and photos may arrive as arrays or as JSON-encoded strings.
type ListingSnapshot struct {
	ID           string           `json:"id"`
	HostID       string           `json:"host_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PropertyType string           `json:"property_type"`
	AddressLine1 string           `json:"address_line1"`
	City         string           `json:"city"`
	Country      string           `json:"country"`
	Amenities    json.RawMessage  `json:"amenities"`
	Photos       json.RawMessage  `json:"photos"`
	Currency     string           `json:"currency"`
	NightlyRate  decimal.Decimal  `json:"nightly_rate"`
	CleaningFee  decimal.Decimal  `json:"cleaning_fee"`
	ServiceFee   *decimal.Decimal `json:"service_fee"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	MaxGuests    int              `json:"max_guests"`
	Rating       float64          `json:"rating"`
	Active       *bool            `json:"active"`
}

// UnmarshalJSON also accepts the camelCase pricing keys the property data
// service uses (pricePerNight, cleaningFee, serviceFee or serviceFeeRate,
// taxRate, maxGuests). Snake case keys win when both are present.
func (s *ListingSnapshot) UnmarshalJSON(data []byte) error {
	type plain ListingSnapshot
	var aux struct {
		plain
		PricePerNight  *decimal.Decimal `json:"pricePerNight"`
		CleaningFeeAlt *decimal.Decimal `json:"cleaningFee"`
		ServiceFeeAlt  *decimal.Decimal `json:"serviceFee"`
		ServiceFeeRate *decimal.Decimal `json:"serviceFeeRate"`
		TaxRateAlt     *decimal.Decimal `json:"taxRate"`
		MaxGuestsAlt   *int             `json:"maxGuests"`
		HostIDAlt      string           `json:"hostId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = ListingSnapshot(aux.plain)
	if !hasKey(data, "nightly_rate") && aux.PricePerNight != nil {
		s.NightlyRate = *aux.PricePerNight
	}
	if !hasKey(data, "cleaning_fee") && aux.CleaningFeeAlt != nil {
		s.CleaningFee = *aux.CleaningFeeAlt
	}
	if s.ServiceFee == nil {
		if aux.ServiceFeeAlt != nil {
			s.ServiceFee = aux.ServiceFeeAlt
		} else {
			s.ServiceFee = aux.ServiceFeeRate
		}
	}
	if s.TaxRate == nil {
		s.TaxRate = aux.TaxRateAlt
	}
	if s.MaxGuests == 0 && aux.MaxGuestsAlt != nil {
		s.MaxGuests = *aux.MaxGuestsAlt
	}
	if s.HostID == "" {
		s.HostID = aux.HostIDAlt
	}
	return nil
}

func hasKey(data []byte, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}

// SyncListingCommand creates or refreshes a listing from a snapshot.
type SyncListingCommand struct {
	Snapshot ListingSnapshot
}

func (c SyncListingCommand) Key() string { return syncListingKey }

func (c SyncListingCommand) Validate() error {
	if strings.TrimSpace(c.Snapshot.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrSnapshotIncomplete)
	}
	if strings.TrimSpace(c.Snapshot.HostID) == "" {
		return fmt.Errorf("%w: missing host", ErrSnapshotIncomplete)
	}
	return nil
}

type SyncListingResult struct {
	ListingID string `json:"listing_id"`
	Created   bool   `json:"created"`
}

type SyncListingHandler struct {
	Defaults PricingDefaults
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    handlersupport.Clock
	Logger   *slog.Logger
}

func (h *SyncListingHandler) Handle(ctx context.Context, cmd SyncListingCommand) (SyncListingResult, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return SyncListingResult{}, err
	}
	snap := cmd.Snapshot
	id := domainlistings.ListingID(strings.TrimSpace(snap.ID))
	now := h.Clock.Now()
	pricing := h.pricing(snap)

	listing, err := unit.Listings().ByID(ctx, id)
	created := false
	switch {
	case errors.Is(err, domainlistings.ErrNotFound):
		listing, err = domainlistings.NewListing(domainlistings.CreateListingParams{
			ID:           id,
			Host:         domainlistings.HostID(strings.TrimSpace(snap.HostID)),
			Title:        snap.Title,
			Description:  snap.Description,
			PropertyType: snap.PropertyType,
			Address:      h.address(snap),
			Amenities:    domainlistings.NormalizeStringList(snap.Amenities),
			Photos:       domainlistings.NormalizeStringList(snap.Photos),
			Rating:       snap.Rating,
			Pricing:      pricing,
			Now:          now,
		})
		if err != nil {
			return SyncListingResult{}, err
		}
		created = true
	case err != nil:
		return SyncListingResult{}, err
	default:
		listing.Title = strings.TrimSpace(snap.Title)
		listing.Description = strings.TrimSpace(snap.Description)
		listing.PropertyType = strings.TrimSpace(snap.PropertyType)
		listing.Address = h.address(snap)
		listing.Amenities = domainlistings.NormalizeStringList(snap.Amenities)
		listing.Photos = domainlistings.NormalizeStringList(snap.Photos)
		listing.Rating = snap.Rating
		if !listing.Pricing.Equal(pricing) {
			if err := listing.UpdatePricing(pricing, now); err != nil {
				return SyncListingResult{}, err
			}
		}
	}
	if len(listing.Photos) > 0 && listing.ThumbnailURL == "" {
		listing.ThumbnailURL = listing.Photos[0]
	}

	if snap.Active == nil || *snap.Active {
		if err := listing.Activate(now); err != nil {
			return SyncListingResult{}, err
		}
	} else if listing.State == domainlistings.ListingActive {
		if err := listing.Suspend(now, "source-inactive"); err != nil {
			return SyncListingResult{}, err
		}
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return SyncListingResult{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return SyncListingResult{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("listing synced", "listing_id", listing.ID, "created", created, "state", listing.State)
	}
	return SyncListingResult{ListingID: string(listing.ID), Created: created}, nil
}

func (h *SyncListingHandler) address(snap ListingSnapshot) domainlistings.Address {
	return domainlistings.Address{
		Line1:   strings.TrimSpace(snap.AddressLine1),
		City:    strings.TrimSpace(snap.City),
		Country: strings.TrimSpace(snap.Country),
	}
}

func (h *SyncListingHandler) pricing(snap ListingSnapshot) domainlistings.Pricing {
	currency := snap.Currency
	if strings.TrimSpace(currency) == "" {
		currency = h.Defaults.Currency
	}
	serviceRate := h.Defaults.ServiceFeeRate
	if snap.ServiceFee != nil {
		serviceRate = *snap.ServiceFee
	}
	taxRate := h.Defaults.TaxRate
	if snap.TaxRate != nil {
		taxRate = *snap.TaxRate
	}
	return domainlistings.Pricing{
		Currency:         strings.ToUpper(strings.TrimSpace(currency)),
		NightlyRateCents: snap.NightlyRate.Round(2).Shift(2).IntPart(),
		CleaningFeeCents: snap.CleaningFee.Round(2).Shift(2).IntPart(),
		ServiceFeeRate:   domainlistings.NormalizeRate(serviceRate),
		TaxRate:          domainlistings.NormalizeRate(taxRate),
		GuestsLimit:      snap.MaxGuests,
	}
}

var _ commands.Handler[SyncListingCommand, SyncListingResult] = (*SyncListingHandler)(nil)
