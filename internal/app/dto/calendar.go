package dto

import (
	"time"

	domainavailability "stayhub/internal/domain/availability"
)

type CalendarDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type Calendar struct {
	ListingID string        `json:"listing_id"`
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	Days      []CalendarDay `json:"days"`
}

func MapCalendarDays(days []domainavailability.Day) []CalendarDay {
	out := make([]CalendarDay, 0, len(days))
	for _, d := range days {
		out = append(out, CalendarDay{Date: d.Date.Format(time.DateOnly), Available: d.Available, Reason: string(d.Reason)})
	}
	return out
}
