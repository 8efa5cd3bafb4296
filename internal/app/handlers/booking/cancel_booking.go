package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/domain/auth"
	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	Session   auth.Session
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string             { return cancelBookingKey }
func (c CancelBookingCommand) Actor() auth.Session     { return c.Session }
func (c CancelBookingCommand) RequiredRole() auth.Role { return auth.RoleGuest }

// CancelBookingHandler lets guests cancel their own bookings. Confirmed
// bookings give their dates back and release the payment hold after the
// cancellation is stored.
type CancelBookingHandler struct {
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    handlersupport.Clock
	Logger   *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (dto.BookingResult, error) {
	unit, err := handlersupport.UnitFromContext(ctx)
	if err != nil {
		return dto.BookingResult{}, err
	}
	bookingID := strings.TrimSpace(cmd.BookingID)
	if bookingID == "" {
		return dto.BookingResult{}, ErrBookingIDRequired
	}
	booking, err := unit.Booking().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return dto.BookingResult{}, err
	}
	if booking.GuestID != cmd.Session.UserID {
		return dto.BookingResult{}, domainbooking.ErrForbidden
	}

	now := h.Clock.Now()
	wasConfirmed := booking.Occupies()
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "guest-cancelled"
	}
	holdID, err := booking.Cancel(reason, now)
	if err != nil {
		return dto.BookingResult{}, err
	}

	var calendar *domainavailability.Calendar
	if wasConfirmed {
		calendar, err = unit.Availability().Calendar(ctx, booking.ListingID)
		if err != nil {
			return dto.BookingResult{}, err
		}
		if err := calendar.Release(string(booking.ID), now); err != nil && !errors.Is(err, domainavailability.ErrRangeNotFound) {
			return dto.BookingResult{}, err
		}
		if err := unit.Availability().Save(ctx, calendar); err != nil {
			return dto.BookingResult{}, err
		}
	}
	if err := unit.Booking().Save(ctx, booking); err != nil {
		return dto.BookingResult{}, err
	}
	sources := []outbox.EventSource{booking}
	if calendar != nil {
		sources = append(sources, calendar)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, sources...); err != nil {
		return dto.BookingResult{}, err
	}

	if holdID != "" && h.Payments != nil {
		if err := h.Payments.Release(ctx, holdID); err != nil && h.Logger != nil {
			h.Logger.Error("payment hold release failed", "booking_id", booking.ID, "hold_id", holdID, "error", err)
		}
	}
	if h.Logger != nil {
		h.Logger.Info("booking cancelled", "booking_id", booking.ID, "guest_id", booking.GuestID, "was_confirmed", wasConfirmed)
	}
	return dto.MapBookingResult(booking), nil
}

var _ commands.Handler[CancelBookingCommand, dto.BookingResult] = (*CancelBookingHandler)(nil)
