package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain/quote"
)

func TestMapQuoteRoundsForDisplay(t *testing.T) {
	profile := quote.PricingProfile{
		Currency:       "USD",
		NightlyRate:    decimal.NewFromInt(100),
		CleaningFee:    decimal.NewFromInt(50),
		ServiceFeeRate: decimal.RequireFromString("0.1"),
		TaxRate:        decimal.RequireFromString("0.12"),
		MaxGuests:      4,
	}
	a := quote.NewAssembler(func() time.Time { return time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC) })
	q := a.Assemble(quote.StayRequest{
		PropertyID: "p1",
		CheckIn:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		Guests:     quote.GuestCount{Adults: 2},
	}, profile)

	got := MapQuote(q, true)
	want := []struct {
		code    string
		display string
	}{
		{quote.LineBaseSubtotal, "500.00"},
		{quote.LineCleaningFee, "50.00"},
		{quote.LineServiceFee, "50.00"},
		{quote.LineTaxes, "66.00"},
		{quote.LineTotal, "666.00"},
	}
	if len(got.Breakdown) != len(want) {
		t.Fatalf("breakdown: got %d lines", len(got.Breakdown))
	}
	for i, w := range want {
		if got.Breakdown[i].Code != w.code || got.Breakdown[i].Amount.Display != w.display {
			t.Fatalf("line %d: got %+v, want %s %s", i, got.Breakdown[i], w.code, w.display)
		}
	}
	if got.Total.Amount != 66600 || !got.IsValid || !got.Available {
		t.Fatalf("unexpected quote %+v", got)
	}
	if got.ValidationErrors == nil {
		t.Fatal("validation errors must render as an empty list")
	}
}

func TestMapQuoteWithoutNights(t *testing.T) {
	q := quote.Assembler{}.Assemble(quote.StayRequest{
		CheckIn:  time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
		Guests:   quote.GuestCount{Adults: 1},
	}, quote.PricingProfile{Currency: "USD", MaxGuests: 1})

	got := MapQuote(q, false)
	if len(got.Breakdown) != 0 || got.Total.Display != "0.00" {
		t.Fatalf("unexpected breakdown %+v", got)
	}
	if len(got.ValidationErrors) != 1 || got.ValidationErrors[0] != quote.MsgCheckoutNotAfterCheckIn {
		t.Fatalf("errors: %v", got.ValidationErrors)
	}
}
