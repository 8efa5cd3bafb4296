package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	meapp "stayhub/internal/app/handlers/me"
	"stayhub/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := meapp.ListGuestBookingsQuery{Session: user}
	result, err := queries.Ask[meapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
