package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies/mocks"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/storage/memory"
)

var (
	now       = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	guest     = auth.Session{UserID: "guest-1", Roles: []auth.Role{auth.RoleGuest}}
	otherUser = auth.Session{UserID: "guest-2", Roles: []auth.Role{auth.RoleGuest}}
	host      = auth.Session{UserID: "host-1", Roles: []auth.Role{auth.RoleHost}}
)

type fixture struct {
	bus      commands.Bus
	base     *commands.InMemoryBus
	store    *memory.Store
	box      *memory.Outbox
	payments *mocks.MockPaymentsPort
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	payments := mocks.NewMockPaymentsPort(ctrl)

	store := memory.NewStore()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:      "lst-1",
		Host:    "host-1",
		Title:   "Harbour flat",
		Address: domainlistings.Address{Line1: "2 Quay St", City: "Porto", Country: "PT"},
		Pricing: domainlistings.Pricing{
			Currency:         "USD",
			NightlyRateCents: 10000,
			CleaningFeeCents: 5000,
			ServiceFeeRate:   decimal.RequireFromString("0.10"),
			TaxRate:          decimal.RequireFromString("0.12"),
			GuestsLimit:      3,
		},
		Now: now,
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := listing.Activate(now); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	store.SeedListing(context.Background(), listing)

	box := memory.NewOutbox(nil)
	encoder := outbox.JSONEventEncoder{Source: "test"}
	clock := func() time.Time { return now }
	ids := []string{"bkg-1", "bkg-2", "bkg-3"}
	nextID := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[booking.RequestBookingCommand, dto.BookingResult](base, booking.RequestBookingCommand{}.Key(),
		&booking.RequestBookingHandler{Outbox: box, Encoder: encoder, Clock: clock, NewID: nextID})
	commands.RegisterHandler[booking.ConfirmHostBookingCommand, dto.BookingResult](base, booking.ConfirmHostBookingCommand{}.Key(),
		&booking.ConfirmHostBookingHandler{Payments: payments, Outbox: box, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[booking.DeclineHostBookingCommand, dto.BookingResult](base, booking.DeclineHostBookingCommand{}.Key(),
		&booking.DeclineHostBookingHandler{Outbox: box, Encoder: encoder, Clock: clock})
	commands.RegisterHandler[booking.CancelBookingCommand, dto.BookingResult](base, booking.CancelBookingCommand{}.Key(),
		&booking.CancelBookingHandler{Payments: payments, Outbox: box, Encoder: encoder, Clock: clock})

	bus := middleware.ChainCommands(base,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Authorization(middleware.SessionAuthorizer{}),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil),
		middleware.Transaction(memory.NewFactory(store), nil),
		middleware.OutboxFlush(box),
	)
	return fixture{bus: bus, base: base, store: store, box: box, payments: payments}
}

func request(f fixture, session auth.Session, key string, checkIn, checkOut time.Time, guests quote.GuestCount) (dto.BookingResult, error) {
	return commands.Dispatch[booking.RequestBookingCommand, dto.BookingResult](context.Background(), f.bus, booking.RequestBookingCommand{
		Session:         session,
		ListingID:       "lst-1",
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          guests,
		IdempotencyKeyV: key,
	})
}

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRequestBookingSnapshotsQuoteTotal(t *testing.T) {
	f := newFixture(t)

	res, err := request(f, guest, "", date(6, 1), date(6, 6), quote.GuestCount{Adults: 2, Children: 1, Infants: 1})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.BookingID != "bkg-1" || res.Status != string(domainbooking.StatePending) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Total.Amount != 66600 || res.Total.Display != "666.00" {
		t.Fatalf("total: got %+v", res.Total)
	}
	published := f.box.Published()
	if len(published) != 1 || published[0].Name != "booking.requested" {
		t.Fatalf("unexpected events %+v", published)
	}
}

func TestRequestBookingRejectsInvalidQuote(t *testing.T) {
	f := newFixture(t)

	_, err := request(f, guest, "", date(6, 1), date(6, 1), quote.GuestCount{Children: 4})
	var rejected *domainbooking.QuoteRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected QuoteRejectedError, got %v", err)
	}
	want := []string{quote.MsgCheckoutNotAfterCheckIn, quote.CapacityExceededMessage(3), quote.MsgAdultRequired}
	if len(rejected.Reasons) != len(want) {
		t.Fatalf("reasons: got %v, want %v", rejected.Reasons, want)
	}
	for i := range want {
		if rejected.Reasons[i] != want[i] {
			t.Fatalf("reason %d: got %q, want %q", i, rejected.Reasons[i], want[i])
		}
	}
	if len(f.box.Published()) != 0 {
		t.Fatal("rejected requests must not publish events")
	}
}

func TestRequestBookingReplaysIdempotentRetry(t *testing.T) {
	f := newFixture(t)

	first, err := request(f, guest, "retry-1", date(6, 1), date(6, 3), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := request(f, guest, "retry-1", date(6, 1), date(6, 3), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if first != second {
		t.Fatalf("retry returned %+v, want %+v", second, first)
	}
	if len(f.box.Published()) != 1 {
		t.Fatalf("retry must not create a second booking, events %d", len(f.box.Published()))
	}
}

func TestRequestBookingRequiresGuestRole(t *testing.T) {
	f := newFixture(t)

	_, err := request(f, auth.Session{}, "", date(6, 1), date(6, 3), quote.GuestCount{Adults: 1})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestConfirmPlacesHoldAndBlocksDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := request(f, guest, "", date(6, 1), date(6, 6), quote.GuestCount{Adults: 2})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	f.payments.EXPECT().PlaceHold(gomock.Any(), first.BookingID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, amount money.Money) (string, error) {
			if amount.Amount != 66600 || amount.Currency != "USD" {
				t.Errorf("hold amount: got %+v", amount)
			}
			return "hold-1", nil
		})

	confirmed, err := commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.ConfirmHostBookingCommand{
		Session:   host,
		BookingID: first.BookingID,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != string(domainbooking.StateConfirmed) {
		t.Fatalf("status: got %s", confirmed.Status)
	}

	second, err := request(f, otherUser, "", date(6, 3), date(6, 8), quote.GuestCount{Adults: 1})
	if !errors.Is(err, domainbooking.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable for overlapping stay, got %+v %v", second, err)
	}
}

var errCommitFailed = errors.New("commit failed")

type failingCommitFactory struct{ uow.UoWFactory }

func (f failingCommitFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.UoWFactory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return failingCommitUnit{unit}, nil
}

type failingCommitUnit struct{ uow.UnitOfWork }

func (failingCommitUnit) Commit(context.Context) error { return errCommitFailed }

func TestConfirmReleasesHoldWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := request(f, guest, "", date(6, 1), date(6, 6), quote.GuestCount{Adults: 2})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	gomock.InOrder(
		f.payments.EXPECT().PlaceHold(gomock.Any(), pending.BookingID, gomock.Any()).Return("hold-7", nil),
		f.payments.EXPECT().Release(gomock.Any(), "hold-7").Return(nil),
	)

	bus := middleware.ChainCommands(f.base, middleware.Transaction(failingCommitFactory{memory.NewFactory(f.store)}, nil))
	_, err = commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, bus, booking.ConfirmHostBookingCommand{
		Session:   host,
		BookingID: pending.BookingID,
	})
	if !errors.Is(err, errCommitFailed) {
		t.Fatalf("expected commit failure, got %v", err)
	}

	// Nothing was committed, so the dates are still free for another guest.
	if _, err := request(f, otherUser, "", date(6, 2), date(6, 4), quote.GuestCount{Adults: 1}); err != nil {
		t.Fatalf("dates must stay available: %v", err)
	}
}

func TestConfirmFailsWhenDatesAreTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := request(f, guest, "", date(7, 1), date(7, 4), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("request a: %v", err)
	}
	b, err := request(f, otherUser, "", date(7, 2), date(7, 5), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("request b: %v", err)
	}

	f.payments.EXPECT().PlaceHold(gomock.Any(), a.BookingID, gomock.Any()).Return("hold-a", nil)
	if _, err := commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.ConfirmHostBookingCommand{Session: host, BookingID: a.BookingID}); err != nil {
		t.Fatalf("confirm a: %v", err)
	}

	_, err = commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.ConfirmHostBookingCommand{Session: host, BookingID: b.BookingID})
	if !errors.Is(err, domainbooking.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
}

func TestConfirmRejectsForeignHost(t *testing.T) {
	f := newFixture(t)

	res, err := request(f, guest, "", date(6, 1), date(6, 2), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	stranger := auth.Session{UserID: "host-2", Roles: []auth.Role{auth.RoleHost}}
	_, err = commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](context.Background(), f.bus, booking.ConfirmHostBookingCommand{Session: stranger, BookingID: res.BookingID})
	if !errors.Is(err, booking.ErrBookingNotOwned) {
		t.Fatalf("expected ErrBookingNotOwned, got %v", err)
	}
}

func TestCancelConfirmedBookingReleasesHoldAndDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := request(f, guest, "", date(8, 10), date(8, 12), quote.GuestCount{Adults: 2})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	gomock.InOrder(
		f.payments.EXPECT().PlaceHold(gomock.Any(), res.BookingID, gomock.Any()).Return("hold-9", nil),
		f.payments.EXPECT().Release(gomock.Any(), "hold-9").Return(nil),
	)
	if _, err := commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.ConfirmHostBookingCommand{Session: host, BookingID: res.BookingID}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := commands.Dispatch[booking.CancelBookingCommand, dto.BookingResult](ctx, f.bus, booking.CancelBookingCommand{Session: otherUser, BookingID: res.BookingID}); !errors.Is(err, domainbooking.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another guest, got %v", err)
	}

	cancelled, err := commands.Dispatch[booking.CancelBookingCommand, dto.BookingResult](ctx, f.bus, booking.CancelBookingCommand{Session: guest, BookingID: res.BookingID})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != string(domainbooking.StateCancelled) {
		t.Fatalf("status: got %s", cancelled.Status)
	}

	if _, err := request(f, otherUser, "", date(8, 10), date(8, 12), quote.GuestCount{Adults: 1}); err != nil {
		t.Fatalf("released dates must be bookable again: %v", err)
	}
}

func TestDeclinePendingBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := request(f, guest, "", date(9, 1), date(9, 3), quote.GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	declined, err := commands.Dispatch[booking.DeclineHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.DeclineHostBookingCommand{Session: host, BookingID: res.BookingID})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != string(domainbooking.StateDeclined) {
		t.Fatalf("status: got %s", declined.Status)
	}
	_, err = commands.Dispatch[booking.ConfirmHostBookingCommand, dto.BookingResult](ctx, f.bus, booking.ConfirmHostBookingCommand{Session: host, BookingID: res.BookingID})
	if !errors.Is(err, domainbooking.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
