package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/queries"
)

type HostBookingHTTP interface {
	List(c *gin.Context)
	Confirm(c *gin.Context)
	Decline(c *gin.Context)
	Stats(c *gin.Context)
}

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries bus unavailable"})
		return
	}
	query := bookingapp.ListHostBookingsQuery{Session: host, Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Confirm(c *gin.Context) {
	host, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	cmd := bookingapp.ConfirmHostBookingCommand{
		Session:   host,
		BookingID: strings.TrimSpace(c.Param("id")),
	}
	result, err := commands.Dispatch[bookingapp.ConfirmHostBookingCommand, dto.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Decline(c *gin.Context) {
	host, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	var req reasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := bookingapp.DeclineHostBookingCommand{
		Session:   host,
		BookingID: strings.TrimSpace(c.Param("id")),
		Reason:    strings.TrimSpace(req.Reason),
	}
	result, err := commands.Dispatch[bookingapp.DeclineHostBookingCommand, dto.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Stats(c *gin.Context) {
	host, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries bus unavailable"})
		return
	}
	from, err := optionalTime("from", c.Query("from"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	to, err := optionalTime("to", c.Query("to"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	query := bookingapp.HostStatsQuery{Session: host, From: from, To: to}
	result, err := queries.Ask[bookingapp.HostStatsQuery, dto.HostStats](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}
