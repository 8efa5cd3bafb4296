package booking

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain/quote"
)

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func testProfile() quote.PricingProfile {
	return quote.PricingProfile{
		Currency:       "USD",
		NightlyRate:    decimal.NewFromInt(100),
		CleaningFee:    decimal.NewFromInt(50),
		ServiceFeeRate: decimal.RequireFromString("0.1"),
		TaxRate:        decimal.RequireFromString("0.12"),
		MaxGuests:      3,
	}
}

func testQuote(guests quote.GuestCount) quote.BookingQuote {
	a := quote.NewAssembler(func() time.Time { return testNow })
	return a.Assemble(quote.StayRequest{
		PropertyID: "lst-1",
		CheckIn:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Guests:     guests,
	}, testProfile())
}

func newPending(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		ListingID: "lst-1",
		HostID:    "host-1",
		GuestID:   "guest-1",
		Quote:     testQuote(quote.GuestCount{Adults: 2}),
		Profile:   testProfile(),
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestNewBookingSnapshotsQuote(t *testing.T) {
	b := newPending(t)
	if b.State != StatePending {
		t.Fatalf("state: got %s", b.State)
	}
	if b.Price.Total.Amount != 66600 || b.Price.Nights != 5 {
		t.Fatalf("unexpected price %+v", b.Price)
	}
	evts := b.PendingEvents()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	requested, ok := evts[0].(BookingRequested)
	if !ok || requested.TotalCents != 66600 || requested.Currency != "USD" {
		t.Fatalf("unexpected event %#v", evts[0])
	}
}

func TestNewBookingRejectsInvalidQuote(t *testing.T) {
	q := testQuote(quote.GuestCount{Children: 4})
	_, err := NewBooking(CreateParams{ID: "bk", ListingID: "lst-1", GuestID: "g", Quote: q, Profile: testProfile(), CreatedAt: testNow})
	var rejected *QuoteRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected QuoteRejectedError, got %v", err)
	}
	want := []string{quote.CapacityExceededMessage(3), quote.MsgAdultRequired}
	if !reflect.DeepEqual(rejected.Reasons, want) {
		t.Fatalf("reasons: got %v, want %v", rejected.Reasons, want)
	}
}

func TestConfirmRequiresHold(t *testing.T) {
	b := newPending(t)
	if err := b.Confirm("", testNow); !errors.Is(err, ErrPaymentHoldRequired) {
		t.Fatalf("expected ErrPaymentHoldRequired, got %v", err)
	}
	if err := b.Confirm("hold-1", testNow); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if b.State != StateConfirmed || b.PaymentHold != "hold-1" || !b.Occupies() {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := b.Decline("late", testNow); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("confirmed booking cannot be declined, got %v", err)
	}
}

func TestCancelReturnsHold(t *testing.T) {
	b := newPending(t)
	if err := b.Confirm("hold-1", testNow); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	b.ClearEvents()
	hold, err := b.Cancel("plans changed", testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if hold != "hold-1" || b.State != StateCancelled {
		t.Fatalf("unexpected cancel result hold=%q state=%s", hold, b.State)
	}
	cancelled, ok := b.PendingEvents()[0].(BookingCancelled)
	if !ok || !cancelled.WasConfirmed {
		t.Fatalf("unexpected event %#v", b.PendingEvents())
	}
	if _, err := b.Cancel("again", testNow); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestDeclinePending(t *testing.T) {
	b := newPending(t)
	if err := b.Decline("maintenance", testNow); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if b.State != StateDeclined {
		t.Fatalf("state: got %s", b.State)
	}
}
