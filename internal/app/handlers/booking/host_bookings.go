package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

const (
	listHostBookingsKey    = "host.bookings.list"
	confirmHostBookingKey  = "host.bookings.confirm"
	declineHostBookingKey  = "host.bookings.decline"
	defaultHostListLimit   = 60
	allStatusesFilterValue = "ALL"
)

var (
	ErrBookingNotOwned   = errors.New("booking: not owned by host")
	ErrListingRequired   = errors.New("booking: listing id is required")
	ErrBookingIDRequired = errors.New("booking: booking id is required")
)

type ListHostBookingsQuery struct {
	Session auth.Session
	Status  string
}

func (q ListHostBookingsQuery) Key() string             { return listHostBookingsKey }
func (q ListHostBookingsQuery) Actor() auth.Session     { return q.Session }
func (q ListHostBookingsQuery) RequiredRole() auth.Role { return auth.RoleHost }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	hostListings, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Host:  domainlistings.HostID(q.Session.UserID),
		Limit: defaultHostListLimit,
	})
	if err != nil {
		return dto.BookingCollection{}, err
	}

	statusFilter := strings.ToUpper(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = string(domainbooking.StatePending)
	}
	allStatuses := statusFilter == allStatusesFilterValue

	items := make([]dto.BookingSummary, 0)
	for _, listing := range hostListings.Items {
		bookings, err := unit.Booking().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		for _, b := range bookings {
			if !allStatuses && string(b.State) != statusFilter {
				continue
			}
			items = append(items, dto.MapBookingSummary(b, listing, true))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", q.Session.UserID, "count", len(items), "status", statusFilter)
	}
	return dto.BookingCollection{Items: items}, nil
}

type ConfirmHostBookingCommand struct {
	Session   auth.Session
	BookingID string
}

func (c ConfirmHostBookingCommand) Key() string             { return confirmHostBookingKey }
func (c ConfirmHostBookingCommand) Actor() auth.Session     { return c.Session }
func (c ConfirmHostBookingCommand) RequiredRole() auth.Role { return auth.RoleHost }

type DeclineHostBookingCommand struct {
	Session   auth.Session
	BookingID string
	Reason    string
}

func (c DeclineHostBookingCommand) Key() string             { return declineHostBookingKey }
func (c DeclineHostBookingCommand) Actor() auth.Session     { return c.Session }
func (c DeclineHostBookingCommand) RequiredRole() auth.Role { return auth.RoleHost }

// ConfirmHostBookingHandler places a payment hold for the snapshot total,
// blocks the calendar and confirms the booking. A hold placed for a
// booking that is not committed as confirmed is released again.
type ConfirmHostBookingHandler struct {
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    handlersupport.Clock
	Logger   *slog.Logger
}

func (h *ConfirmHostBookingHandler) Handle(ctx context.Context, cmd ConfirmHostBookingCommand) (dto.BookingResult, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return dto.BookingResult{}, err
	}
	booking, err := loadOwnedBooking(ctx, unit, cmd.Session.UserID, cmd.BookingID)
	if err != nil {
		return dto.BookingResult{}, err
	}
	if booking.State != domainbooking.StatePending {
		return dto.BookingResult{}, domainbooking.ErrInvalidState
	}

	calendar, err := unit.Availability().Calendar(ctx, booking.ListingID)
	if err != nil {
		return dto.BookingResult{}, err
	}
	now := h.Clock.Now()
	if err := calendar.Reserve(booking.Range, string(booking.ID), now); err != nil {
		return dto.BookingResult{}, domainbooking.ErrDatesUnavailable
	}

	if h.Payments == nil {
		return dto.BookingResult{}, errors.New("booking: payments unavailable")
	}
	holdID, err := h.Payments.PlaceHold(ctx, string(booking.ID), booking.Price.Total)
	if err != nil {
		return dto.BookingResult{}, err
	}
	release := func(ctx context.Context) {
		if relErr := h.Payments.Release(ctx, holdID); relErr != nil && h.Logger != nil {
			h.Logger.Error("payment hold release failed", "booking_id", booking.ID, "hold_id", holdID, "error", relErr)
		}
	}
	// The hold outlives the transaction, so it is released on any rollback,
	// including a failed commit after this handler returns.
	registered := uow.OnRollback(ctx, release)
	fail := func(err error) (dto.BookingResult, error) {
		if !registered {
			release(context.WithoutCancel(ctx))
		}
		return dto.BookingResult{}, err
	}

	if err := booking.Confirm(holdID, now); err != nil {
		return fail(err)
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return fail(err)
	}
	if err := unit.Booking().Save(ctx, booking); err != nil {
		return fail(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking, calendar); err != nil {
		return fail(err)
	}

	if h.Logger != nil {
		h.Logger.Info("host booking confirmed", "booking_id", booking.ID, "host_id", cmd.Session.UserID, "listing_id", booking.ListingID)
	}
	return dto.MapBookingResult(booking), nil
}

type DeclineHostBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   handlersupport.Clock
	Logger  *slog.Logger
}

func (h *DeclineHostBookingHandler) Handle(ctx context.Context, cmd DeclineHostBookingCommand) (dto.BookingResult, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return dto.BookingResult{}, err
	}
	booking, err := loadOwnedBooking(ctx, unit, cmd.Session.UserID, cmd.BookingID)
	if err != nil {
		return dto.BookingResult{}, err
	}

	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "host-declined"
	}
	if err := booking.Decline(reason, h.Clock.Now()); err != nil {
		return dto.BookingResult{}, err
	}
	if err := unit.Booking().Save(ctx, booking); err != nil {
		return dto.BookingResult{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return dto.BookingResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("host booking declined", "booking_id", booking.ID, "host_id", cmd.Session.UserID, "reason", reason)
	}
	return dto.MapBookingResult(booking), nil
}

func loadOwnedBooking(ctx context.Context, unit uow.UnitOfWork, hostID, bookingID string) (*domainbooking.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, ErrBookingIDRequired
	}
	booking, err := unit.Booking().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Host != domainlistings.HostID(hostID) {
		return nil, ErrBookingNotOwned
	}
	return booking, nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.BookingCollection] = (*ListHostBookingsHandler)(nil)
var _ commands.Handler[ConfirmHostBookingCommand, dto.BookingResult] = (*ConfirmHostBookingHandler)(nil)
var _ commands.Handler[DeclineHostBookingCommand, dto.BookingResult] = (*DeclineHostBookingHandler)(nil)
