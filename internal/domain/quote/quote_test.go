package quote

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func sampleProfile() PricingProfile {
	return PricingProfile{
		Currency:       "USD",
		NightlyRate:    decimal.NewFromInt(100),
		CleaningFee:    decimal.NewFromInt(50),
		ServiceFeeRate: decimal.RequireFromString("0.10"),
		TaxRate:        decimal.RequireFromString("0.12"),
		MaxGuests:      3,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: got %s, want %s", name, got.String(), want)
	}
}

func TestValidateDates(t *testing.T) {
	today := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	cases := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		allowPast bool
		nights    int
		errs      []string
	}{
		{name: "five nights", checkIn: day(2024, 1, 1), checkOut: day(2024, 1, 6), nights: 5},
		{name: "same day", checkIn: day(2024, 3, 10), checkOut: day(2024, 3, 10), errs: []string{MsgCheckoutNotAfterCheckIn}},
		{name: "reversed", checkIn: day(2024, 3, 10), checkOut: day(2024, 3, 9), errs: []string{MsgCheckoutNotAfterCheckIn}},
		{name: "partial day rounds up", checkIn: day(2024, 2, 1), checkOut: day(2024, 2, 2).Add(23 * time.Hour), nights: 2},
		{name: "past check-in", checkIn: day(2023, 12, 31), checkOut: day(2024, 1, 2), nights: 2, errs: []string{MsgCheckInInPast}},
		{name: "past allowed", checkIn: day(2023, 12, 31), checkOut: day(2024, 1, 2), allowPast: true, nights: 2},
		{name: "both problems", checkIn: day(2023, 12, 20), checkOut: day(2023, 12, 20), errs: []string{MsgCheckoutNotAfterCheckIn, MsgCheckInInPast}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateDates(tc.checkIn, tc.checkOut, DateOptions{Now: today, AllowPast: tc.allowPast})
			if got.Nights != tc.nights {
				t.Fatalf("nights: got %d, want %d", got.Nights, tc.nights)
			}
			if len(got.Errors) != len(tc.errs) || (len(tc.errs) > 0 && !reflect.DeepEqual(got.Errors, tc.errs)) {
				t.Fatalf("errors: got %v, want %v", got.Errors, tc.errs)
			}
		})
	}
}

func TestValidateDatesUsesCallerLocalDate(t *testing.T) {
	// 23:30 on Jan 1 in UTC-5 is already Jan 2 in UTC; the caller's date is still Jan 1.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	got := ValidateDates(day(2024, 1, 1), day(2024, 1, 3), DateOptions{Now: now})
	if len(got.Errors) != 0 {
		t.Fatalf("check-in today must be allowed, got %v", got.Errors)
	}
}

func TestComposeScenario(t *testing.T) {
	p := Compose(5, sampleProfile())
	assertDecimal(t, "base", p.Base, "500")
	assertDecimal(t, "cleaning", p.CleaningFee, "50")
	assertDecimal(t, "service", p.ServiceFee, "50")
	assertDecimal(t, "tax", p.Tax, "66")
	assertDecimal(t, "total", p.Total, "666")
}

func TestComposeDoesNotRoundIntermediates(t *testing.T) {
	profile := PricingProfile{
		NightlyRate:    decimal.RequireFromString("33.33"),
		CleaningFee:    decimal.RequireFromString("10.01"),
		ServiceFeeRate: decimal.RequireFromString("0.145"),
		TaxRate:        decimal.RequireFromString("0.0825"),
	}
	p := Compose(3, profile)
	// base 99.99, service 14.49855, tax (114.48855 * 0.0825) = 9.445305375
	assertDecimal(t, "service", p.ServiceFee, "14.49855")
	assertDecimal(t, "tax", p.Tax, "9.445305375")
	assertDecimal(t, "total", p.Total, "133.943855375")

	r := p.Rounded()
	assertDecimal(t, "rounded service", r.ServiceFee, "14.5")
	assertDecimal(t, "rounded tax", r.Tax, "9.45")
	assertDecimal(t, "rounded total", r.Total, "133.94")
}

func TestComposeTotalIdentity(t *testing.T) {
	rates := []string{"0", "0.05", "0.1", "0.175"}
	for nights := 1; nights <= 30; nights += 7 {
		for _, sr := range rates {
			for _, tr := range rates {
				profile := PricingProfile{
					NightlyRate:    decimal.RequireFromString("87.45"),
					CleaningFee:    decimal.RequireFromString("25"),
					ServiceFeeRate: decimal.RequireFromString(sr),
					TaxRate:        decimal.RequireFromString(tr),
				}
				p := Compose(nights, profile)
				want := profile.NightlyRate.Mul(decimal.NewFromInt(int64(nights))).
					Add(profile.CleaningFee).Add(p.ServiceFee).Add(p.Tax)
				if !p.Total.Equal(want) {
					t.Fatalf("nights=%d sr=%s tr=%s: total %s, want %s", nights, sr, tr, p.Total, want)
				}
				for _, line := range p.Lines() {
					if line.Amount.IsNegative() {
						t.Fatalf("negative component %s: %s", line.Code, line.Amount)
					}
				}
			}
		}
	}
}

func TestLinesDisplayOrder(t *testing.T) {
	lines := Compose(1, sampleProfile()).Lines()
	want := []string{LineBaseSubtotal, LineCleaningFee, LineServiceFee, LineTaxes, LineTotal}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, code := range want {
		if lines[i].Code != code {
			t.Fatalf("line %d: got %s, want %s", i, lines[i].Code, code)
		}
	}
}

func TestCheckCapacity(t *testing.T) {
	cases := []struct {
		name   string
		guests GuestCount
		max    int
		errs   []string
	}{
		{name: "infants excluded", guests: GuestCount{Adults: 2, Children: 1, Infants: 1}, max: 3},
		{name: "exactly at capacity", guests: GuestCount{Adults: 3}, max: 3},
		{name: "one over", guests: GuestCount{Adults: 3, Children: 1}, max: 3, errs: []string{"This property accommodates a maximum of 3 guests."}},
		{name: "no adult", guests: GuestCount{Children: 2}, max: 3, errs: []string{MsgAdultRequired}},
		{name: "over and no adult", guests: GuestCount{Children: 5}, max: 4, errs: []string{CapacityExceededMessage(4), MsgAdultRequired}},
		{name: "negative", guests: GuestCount{Adults: 1, Infants: -1}, max: 2, errs: []string{MsgNegativeGuests}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckCapacity(tc.guests, tc.max)
			if len(got) != len(tc.errs) || (len(tc.errs) > 0 && !reflect.DeepEqual(got, tc.errs)) {
				t.Fatalf("got %v, want %v", got, tc.errs)
			}
		})
	}
}

func TestAssembleValidQuote(t *testing.T) {
	a := NewAssembler(fixedClock(day(2023, 12, 15)))
	q := a.Assemble(StayRequest{
		PropertyID: "prop-1",
		CheckIn:    day(2024, 1, 1),
		CheckOut:   day(2024, 1, 6),
		Guests:     GuestCount{Adults: 2, Children: 1, Infants: 1},
	}, sampleProfile())

	if !q.IsValid {
		t.Fatalf("expected valid quote, got errors %v", q.ValidationErrors)
	}
	if q.Nights != 5 {
		t.Fatalf("nights: got %d, want 5", q.Nights)
	}
	if q.ValidationErrors == nil || len(q.ValidationErrors) != 0 {
		t.Fatalf("expected empty validation errors, got %#v", q.ValidationErrors)
	}
	r := q.Price.Rounded()
	if r.Total.StringFixed(2) != "666.00" {
		t.Fatalf("total: got %s, want 666.00", r.Total.StringFixed(2))
	}
	if q.Currency != "USD" || q.PropertyID != "prop-1" {
		t.Fatalf("unexpected quote header: %+v", q)
	}
}

func TestAssembleSameDayHasOnlyDateError(t *testing.T) {
	a := NewAssembler(fixedClock(day(2024, 1, 1)))
	q := a.Assemble(StayRequest{
		CheckIn:  day(2024, 3, 10),
		CheckOut: day(2024, 3, 10),
		Guests:   GuestCount{Adults: 2},
	}, sampleProfile())

	if q.IsValid {
		t.Fatal("expected invalid quote")
	}
	if len(q.ValidationErrors) != 1 || q.ValidationErrors[0] != MsgCheckoutNotAfterCheckIn {
		t.Fatalf("got %v", q.ValidationErrors)
	}
	if q.Nights != 0 || !q.Price.Total.IsZero() {
		t.Fatalf("expected no pricing, got nights=%d total=%s", q.Nights, q.Price.Total)
	}
}

func TestAssembleAggregatesErrorsAndKeepsPricing(t *testing.T) {
	a := NewAssembler(fixedClock(day(2024, 2, 1)))
	q := a.Assemble(StayRequest{
		CheckIn:  day(2024, 1, 30),
		CheckOut: day(2024, 2, 4),
		Guests:   GuestCount{Children: 4},
	}, sampleProfile())

	want := []string{MsgCheckInInPast, CapacityExceededMessage(3), MsgAdultRequired}
	if !reflect.DeepEqual(q.ValidationErrors, want) {
		t.Fatalf("errors: got %v, want %v", q.ValidationErrors, want)
	}
	if q.IsValid {
		t.Fatal("expected invalid quote")
	}
	if q.Nights != 5 {
		t.Fatalf("nights: got %d, want 5", q.Nights)
	}
	assertDecimal(t, "total", q.Price.Total, "666")
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := NewAssembler(fixedClock(day(2024, 1, 1)))
	req := StayRequest{
		PropertyID: "prop-1",
		CheckIn:    day(2024, 5, 1),
		CheckOut:   day(2024, 5, 4).Add(3 * time.Hour),
		Guests:     GuestCount{Adults: 4},
	}
	first := a.Assemble(req, sampleProfile())
	second := a.Assemble(req, sampleProfile())

	if first.Nights != second.Nights || first.IsValid != second.IsValid {
		t.Fatalf("quotes differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.ValidationErrors, second.ValidationErrors) {
		t.Fatalf("errors differ: %v vs %v", first.ValidationErrors, second.ValidationErrors)
	}
	fl, sl := first.Price.Lines(), second.Price.Lines()
	for i := range fl {
		if fl[i].Amount.String() != sl[i].Amount.String() {
			t.Fatalf("line %s differs: %s vs %s", fl[i].Code, fl[i].Amount, sl[i].Amount)
		}
	}
}

func TestQuoteErrorsReturnsCopy(t *testing.T) {
	a := NewAssembler(fixedClock(day(2024, 1, 1)))
	q := a.Assemble(StayRequest{CheckIn: day(2024, 3, 10), CheckOut: day(2024, 3, 10), Guests: GuestCount{Adults: 1}}, sampleProfile())
	errs := q.Errors()
	errs[0] = "mutated"
	if q.ValidationErrors[0] != MsgCheckoutNotAfterCheckIn {
		t.Fatal("quote errors must not be shared with callers")
	}
}
