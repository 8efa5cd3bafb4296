package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps with an existing block")
	ErrRangeNotFound    = errors.New("availability: range not found")
)

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

// Block occupies the half-open range [CheckIn, CheckOut).
type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

type Calendar struct {
	ListingID listings.ListingID
	Blocks    []Block
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id}
}

func (c *Calendar) CanReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Reserve blocks r for a confirmed booking.
func (c *Calendar) Reserve(r daterange.DateRange, bookingID string, now time.Time) error {
	return c.block(r, ReasonBooking, bookingID, now)
}

// BlockRange lets a host close dates without a booking.
func (c *Calendar) BlockRange(r daterange.DateRange, reason BlockReason, reference string, now time.Time) error {
	if reason == "" {
		reason = ReasonHostBlock
	}
	return c.block(r, reason, reference, now)
}

func (c *Calendar) block(r daterange.DateRange, reason BlockReason, reference string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !c.CanReserve(r) {
		c.Record(CalendarOverbookingPrevented{ListingID: c.ListingID, CheckIn: r.CheckIn, CheckOut: r.CheckOut, Reference: reference, At: now.UTC()})
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: reason, Reference: reference, CreatedAt: now.UTC()})
	sort.SliceStable(c.Blocks, func(i, j int) bool {
		return c.Blocks[i].Range.CheckIn.Before(c.Blocks[j].Range.CheckIn)
	})
	c.Record(CalendarBlocked{ListingID: c.ListingID, CheckIn: r.CheckIn, CheckOut: r.CheckOut, Reason: reason, Reference: reference, At: now.UTC()})
	return nil
}

func (c *Calendar) Release(reference string, now time.Time) error {
	for i, block := range c.Blocks {
		if block.Reference != reference {
			continue
		}
		c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
		c.Record(CalendarReleased{ListingID: c.ListingID, CheckIn: block.Range.CheckIn, CheckOut: block.Range.CheckOut, Reason: block.Reason, Reference: reference, At: now.UTC()})
		return nil
	}
	return ErrRangeNotFound
}

// BlockedNights counts the nights inside window covered by blocks of the
// given reasons, or of any reason when none are passed.
func (c *Calendar) BlockedNights(window daterange.DateRange, reasons ...BlockReason) int {
	total := 0
	for _, block := range c.Blocks {
		if len(reasons) > 0 && !containsReason(reasons, block.Reason) {
			continue
		}
		if part, ok := block.Range.Intersect(window); ok {
			total += part.Nights()
		}
	}
	return total
}

// Day is one calendar date in a window.
type Day struct {
	Date      time.Time
	Available bool
	Reason    BlockReason
}

// Days expands window into per-date availability.
func (c *Calendar) Days(window daterange.DateRange) []Day {
	start := daterange.Day(window.CheckIn)
	end := window.CheckOut
	var out []Day
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		day := Day{Date: d, Available: true}
		for _, block := range c.Blocks {
			if block.Range.ContainsDate(d) {
				day.Available = false
				day.Reason = block.Reason
				break
			}
		}
		out = append(out, day)
	}
	return out
}

func containsReason(reasons []BlockReason, r BlockReason) bool {
	for _, candidate := range reasons {
		if candidate == r {
			return true
		}
	}
	return false
}
