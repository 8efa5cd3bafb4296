package dto

import (
	"time"

	"stayhub/internal/domain/quote"
)

type GuestsDTO struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type PriceLine struct {
	Code   string   `json:"code"`
	Amount MoneyDTO `json:"amount"`
}

type Quote struct {
	PropertyID       string      `json:"property_id"`
	CheckIn          time.Time   `json:"check_in"`
	CheckOut         time.Time   `json:"check_out"`
	Guests           GuestsDTO   `json:"guests"`
	Currency         string      `json:"currency"`
	Nights           int         `json:"nights"`
	Breakdown        []PriceLine `json:"breakdown"`
	Total            MoneyDTO    `json:"total"`
	IsValid          bool        `json:"is_valid"`
	ValidationErrors []string    `json:"validation_errors"`
	Available        bool        `json:"available"`
}

func MapGuests(g quote.GuestCount) GuestsDTO {
	return GuestsDTO{Adults: g.Adults, Children: g.Children, Infants: g.Infants}
}

// MapQuote rounds the breakdown for display. Lines come in display order
// and the breakdown is empty when the quote has no nights.
func MapQuote(q quote.BookingQuote, available bool) Quote {
	out := Quote{
		PropertyID:       q.PropertyID,
		CheckIn:          q.CheckIn,
		CheckOut:         q.CheckOut,
		Guests:           MapGuests(q.Guests),
		Currency:         q.Currency,
		Nights:           q.Nights,
		Breakdown:        []PriceLine{},
		IsValid:          q.IsValid,
		ValidationErrors: q.Errors(),
		Available:        available,
	}
	if out.ValidationErrors == nil {
		out.ValidationErrors = []string{}
	}
	out.Total = MapDecimal(q.Price.Total, q.Currency)
	if q.Nights == 0 {
		return out
	}
	for _, line := range q.Price.Rounded().Lines() {
		out.Breakdown = append(out.Breakdown, PriceLine{Code: line.Code, Amount: MapDecimal(line.Amount, q.Currency)})
	}
	return out
}
