package listings

import (
	"context"
	"strings"
	"time"

	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
)

const (
	getCalendarKey     = "listings.calendar"
	defaultCalendarLen = 60
	maxCalendarLen     = 366
)

type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Clock      handlersupport.Clock
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	from := q.From
	if from.IsZero() {
		from = h.Clock.Now()
	}
	from = daterange.Day(from)
	to := q.To
	if to.IsZero() || to.Sub(from) > maxCalendarLen*24*time.Hour {
		to = from.AddDate(0, 0, defaultCalendarLen)
	}
	window, err := daterange.New(from, to)
	if err != nil {
		return dto.Calendar{}, err
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	id := domainlistings.ListingID(strings.TrimSpace(q.ListingID))
	if _, err := unit.Listings().ByID(execCtx, id); err != nil {
		return dto.Calendar{}, err
	}
	calendar, err := unit.Availability().Calendar(execCtx, id)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.Calendar{
		ListingID: string(id),
		From:      window.CheckIn,
		To:        window.CheckOut,
		Days:      dto.MapCalendarDays(calendar.Days(window)),
	}, nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
