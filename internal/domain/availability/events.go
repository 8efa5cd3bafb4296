package availability

import (
	"time"

	"stayhub/internal/domain/listings"
)

type CalendarBlocked struct {
	ListingID listings.ListingID `json:"listing_id"`
	CheckIn   time.Time          `json:"check_in"`
	CheckOut  time.Time          `json:"check_out"`
	Reason    BlockReason        `json:"reason"`
	Reference string             `json:"reference"`
	At        time.Time          `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return string(e.ListingID) }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	ListingID listings.ListingID `json:"listing_id"`
	CheckIn   time.Time          `json:"check_in"`
	CheckOut  time.Time          `json:"check_out"`
	Reason    BlockReason        `json:"reason"`
	Reference string             `json:"reference"`
	At        time.Time          `json:"at"`
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return string(e.ListingID) }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type CalendarOverbookingPrevented struct {
	ListingID listings.ListingID `json:"listing_id"`
	CheckIn   time.Time          `json:"check_in"`
	CheckOut  time.Time          `json:"check_out"`
	Reference string             `json:"reference"`
	At        time.Time          `json:"at"`
}

func (e CalendarOverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e CalendarOverbookingPrevented) AggregateID() string   { return string(e.ListingID) }
func (e CalendarOverbookingPrevented) OccurredAt() time.Time { return e.At }
