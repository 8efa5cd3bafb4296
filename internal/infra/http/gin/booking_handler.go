package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/domain/quote"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID string        `json:"listing_id"`
	CheckIn   string        `json:"check_in"`
	CheckOut  string        `json:"check_out"`
	Guests    guestsRequest `json:"guests"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Create submits a booking request. The quote is recomputed server side;
// an invalid stay is rejected with 422 and all validation messages.
func (h BookingHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := requireTime("check_in", req.CheckIn)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	checkOut, err := requireTime("check_out", req.CheckOut)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		Session:   session,
		ListingID: strings.TrimSpace(req.ListingID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests: quote.GuestCount{
			Adults:   req.Guests.Adults,
			Children: req.Guests.Children,
			Infants:  req.Guests.Infants,
		},
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
		Location:        callerLocation(c),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, dto.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req reasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{
		Session:   session,
		BookingID: strings.TrimSpace(c.Param("id")),
		Reason:    strings.TrimSpace(req.Reason),
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
