package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
)

const (
	getPricingKey    = "listings.pricing"
	updatePricingKey = "host.listings.pricing.update"
)

var ErrListingNotOwned = errors.New("listings: not owned by host")

type GetPricingQuery struct {
	ListingID string
}

func (q GetPricingQuery) Key() string { return getPricingKey }

type GetPricingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPricingHandler) Handle(ctx context.Context, q GetPricingQuery) (dto.ListingPricing, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingPricing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(strings.TrimSpace(q.ListingID)))
	if err != nil {
		return dto.ListingPricing{}, err
	}
	return dto.MapListingPricing(listing), nil
}

// UpdatePricingCommand replaces a listing's pricing profile. Amounts are in
// major units; rates accept fractions (0.1) or percentages (10).
type UpdatePricingCommand struct {
	Session        auth.Session
	ListingID      string
	Currency       string
	NightlyRate    decimal.Decimal
	CleaningFee    decimal.Decimal
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
	MaxGuests      int
}

func (c UpdatePricingCommand) Key() string             { return updatePricingKey }
func (c UpdatePricingCommand) Actor() auth.Session     { return c.Session }
func (c UpdatePricingCommand) RequiredRole() auth.Role { return auth.RoleHost }

func (c UpdatePricingCommand) pricing() domainlistings.Pricing {
	return domainlistings.Pricing{
		Currency:         c.Currency,
		NightlyRateCents: c.NightlyRate.Round(2).Shift(2).IntPart(),
		CleaningFeeCents: c.CleaningFee.Round(2).Shift(2).IntPart(),
		ServiceFeeRate:   domainlistings.NormalizeRate(c.ServiceFeeRate),
		TaxRate:          domainlistings.NormalizeRate(c.TaxRate),
		GuestsLimit:      c.MaxGuests,
	}
}

type UpdatePricingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   handlersupport.Clock
	Logger  *slog.Logger
}

func (h *UpdatePricingHandler) Handle(ctx context.Context, cmd UpdatePricingCommand) (dto.ListingPricing, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return dto.ListingPricing{}, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(strings.TrimSpace(cmd.ListingID)))
	if err != nil {
		return dto.ListingPricing{}, err
	}
	if string(listing.Host) != cmd.Session.UserID && !cmd.Session.HasRole(auth.RoleAdmin) {
		return dto.ListingPricing{}, ErrListingNotOwned
	}
	if err := listing.UpdatePricing(cmd.pricing(), h.Clock.Now()); err != nil {
		return dto.ListingPricing{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingPricing{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.ListingPricing{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing pricing updated", "listing_id", listing.ID, "host_id", listing.Host, "nightly_cents", listing.NightlyRateCents)
	}
	return dto.MapListingPricing(listing), nil
}

var _ queries.Handler[GetPricingQuery, dto.ListingPricing] = (*GetPricingHandler)(nil)
var _ commands.Handler[UpdatePricingCommand, dto.ListingPricing] = (*UpdatePricingHandler)(nil)
