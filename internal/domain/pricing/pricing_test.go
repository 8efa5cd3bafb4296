package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain/quote"
)

func TestFromQuoteSnapshotsRoundedCents(t *testing.T) {
	profile := quote.PricingProfile{
		Currency:       "USD",
		NightlyRate:    decimal.RequireFromString("33.33"),
		CleaningFee:    decimal.RequireFromString("10.01"),
		ServiceFeeRate: decimal.RequireFromString("0.145"),
		TaxRate:        decimal.RequireFromString("0.0825"),
		MaxGuests:      2,
	}
	q := quote.NewAssembler(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }).Assemble(quote.StayRequest{
		PropertyID: "p1",
		CheckIn:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC),
		Guests:     quote.GuestCount{Adults: 1},
	}, profile)

	p, err := FromQuote(q, profile)
	if err != nil {
		t.Fatalf("FromQuote: %v", err)
	}
	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"nightly", p.Nightly.Amount, 3333},
		{"base", p.Base.Amount, 9999},
		{"cleaning", p.CleaningFee.Amount, 1001},
		{"service", p.ServiceFee.Amount, 1450},
		{"tax", p.Tax.Amount, 945},
		{"total", p.Total.Amount, 13394},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
	if p.Nights != 3 {
		t.Fatalf("nights: got %d, want 3", p.Nights)
	}
	if fees := p.Fees(); fees.Amount != 2451 {
		t.Fatalf("fees: got %d, want 2451", fees.Amount)
	}
}

func TestFromQuoteRequiresCurrency(t *testing.T) {
	_, err := FromQuote(quote.BookingQuote{Nights: 1}, quote.PricingProfile{})
	if !errors.Is(err, ErrCurrencyUnset) {
		t.Fatalf("expected ErrCurrencyUnset, got %v", err)
	}
}

func TestFromQuoteRequiresNights(t *testing.T) {
	_, err := FromQuote(quote.BookingQuote{Currency: "USD"}, quote.PricingProfile{Currency: "USD"})
	if !errors.Is(err, ErrNightsRequired) {
		t.Fatalf("expected ErrNightsRequired, got %v", err)
	}
}
