package pricing

import (
	"errors"

	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrNegativeComponent = errors.New("pricing: components cannot be negative")
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNightsRequired    = errors.New("pricing: nights must be positive")
)

// PriceBreakdown is the cents snapshot persisted with a booking. It is taken
// from a quote at request time and never recomputed afterwards.
type PriceBreakdown struct {
	Nights      int
	Nightly     money.Money
	Base        money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Tax         money.Money
	Total       money.Money
}

// FromQuote snapshots the rounded quote breakdown. Total is the exact total
// rounded once, so it may differ by a cent from the sum of the rounded parts.
func FromQuote(q quote.BookingQuote, profile quote.PricingProfile) (PriceBreakdown, error) {
	currency := q.Currency
	if currency == "" {
		return PriceBreakdown{}, ErrCurrencyUnset
	}
	convert := func(lines ...quote.Line) ([]money.Money, error) {
		out := make([]money.Money, 0, len(lines))
		for _, line := range lines {
			m, err := money.FromDecimal(line.Amount, currency)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
	lines := q.Price.Lines()
	parts, err := convert(append(lines, quote.Line{Code: "nightly", Amount: profile.NightlyRate})...)
	if err != nil {
		return PriceBreakdown{}, err
	}
	p := PriceBreakdown{
		Nights:      q.Nights,
		Base:        parts[0],
		CleaningFee: parts[1],
		ServiceFee:  parts[2],
		Tax:         parts[3],
		Total:       parts[4],
		Nightly:     parts[5],
	}
	if err := p.Validate(); err != nil {
		return PriceBreakdown{}, err
	}
	return p, nil
}

func (p PriceBreakdown) Validate() error {
	if p.Total.Currency == "" || p.Nightly.Currency == "" {
		return ErrCurrencyUnset
	}
	if p.Nights <= 0 {
		return ErrNightsRequired
	}
	for _, m := range []money.Money{p.Nightly, p.Base, p.CleaningFee, p.ServiceFee, p.Tax, p.Total} {
		if m.IsNegative() {
			return ErrNegativeComponent
		}
	}
	return nil
}

// Fees returns the cleaning and service fees together.
func (p PriceBreakdown) Fees() money.Money {
	sum, err := p.CleaningFee.Add(p.ServiceFee)
	if err != nil {
		return money.Money{Currency: p.Total.Currency}
	}
	return sum
}
