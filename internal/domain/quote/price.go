package quote

import "github.com/shopspring/decimal"

// PresentationPlaces is the number of fractional digits shown to users.
const PresentationPlaces = 2

// PriceBreakdown lists the quote components in display order.
type PriceBreakdown struct {
	Base        decimal.Decimal
	CleaningFee decimal.Decimal
	ServiceFee  decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Compose prices a stay. Tax applies to base plus service fee; the cleaning
// fee is tax-exempt. No intermediate rounding happens here.
func Compose(nights int, profile PricingProfile) PriceBreakdown {
	base := profile.NightlyRate.Mul(decimal.NewFromInt(int64(nights)))
	service := base.Mul(profile.ServiceFeeRate)
	tax := base.Add(service).Mul(profile.TaxRate)
	total := base.Add(profile.CleaningFee).Add(service).Add(tax)
	return PriceBreakdown{
		Base:        base,
		CleaningFee: profile.CleaningFee,
		ServiceFee:  service,
		Tax:         tax,
		Total:       total,
	}
}

// Rounded rounds every component to cents, half away from zero. Amounts are
// never negative, so this is round-half-up. The total is rounded from its
// exact value, not summed from rounded parts.
func (p PriceBreakdown) Rounded() PriceBreakdown {
	return PriceBreakdown{
		Base:        p.Base.Round(PresentationPlaces),
		CleaningFee: p.CleaningFee.Round(PresentationPlaces),
		ServiceFee:  p.ServiceFee.Round(PresentationPlaces),
		Tax:         p.Tax.Round(PresentationPlaces),
		Total:       p.Total.Round(PresentationPlaces),
	}
}

// Line is one row of the rendered price breakdown.
type Line struct {
	Code   string
	Amount decimal.Decimal
}

const (
	LineBaseSubtotal = "base_subtotal"
	LineCleaningFee  = "cleaning_fee"
	LineServiceFee   = "service_fee"
	LineTaxes        = "taxes"
	LineTotal        = "total"
)

// Lines returns the breakdown in display order: base subtotal, cleaning fee,
// service fee, taxes, total.
func (p PriceBreakdown) Lines() []Line {
	return []Line{
		{Code: LineBaseSubtotal, Amount: p.Base},
		{Code: LineCleaningFee, Amount: p.CleaningFee},
		{Code: LineServiceFee, Amount: p.ServiceFee},
		{Code: LineTaxes, Amount: p.Tax},
		{Code: LineTotal, Amount: p.Total},
	}
}
