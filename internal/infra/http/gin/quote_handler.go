package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	quoteapp "stayhub/internal/app/handlers/quotes"
	"stayhub/internal/app/queries"
)

type QuoteHTTP interface {
	Get(c *gin.Context)
	Create(c *gin.Context)
}

// QuoteHandler serves booking quotes. An invalid stay is still a 200: the
// quote carries is_valid=false and every validation message.
type QuoteHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

type guestsRequest struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type quoteRequest struct {
	ListingID string        `json:"listing_id"`
	CheckIn   string        `json:"check_in"`
	CheckOut  string        `json:"check_out"`
	Guests    guestsRequest `json:"guests"`
	AllowPast bool          `json:"allow_past"`
}

func (h QuoteHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query, err := h.queryFromParams(c)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.ask(c, query)
}

func (h QuoteHandler) Create(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req quoteRequest
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
	h.ask(c, quoteapp.GetQuoteQuery{
		ListingID: strings.TrimSpace(req.ListingID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Adults:    req.Guests.Adults,
		Children:  req.Guests.Children,
		Infants:   req.Guests.Infants,
		AllowPast: req.AllowPast,
		Location:  callerLocation(c),
	})
}

func (h QuoteHandler) queryFromParams(c *gin.Context) (quoteapp.GetQuoteQuery, error) {
	checkIn, err := requireTime("check_in", c.Query("check_in"))
	if err != nil {
		return quoteapp.GetQuoteQuery{}, err
	}
	checkOut, err := requireTime("check_out", c.Query("check_out"))
	if err != nil {
		return quoteapp.GetQuoteQuery{}, err
	}
	counts := make([]int, 3)
	for i, field := range []string{"adults", "children", "infants"} {
		v, err := parseCount(field, c.Query(field))
		if err != nil {
			return quoteapp.GetQuoteQuery{}, err
		}
		counts[i] = v
	}
	return quoteapp.GetQuoteQuery{
		ListingID: strings.TrimSpace(c.Param("id")),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Adults:    counts[0],
		Children:  counts[1],
		Infants:   counts[2],
		AllowPast: parseBool(c.Query("allow_past")),
		Location:  callerLocation(c),
	}, nil
}

func (h QuoteHandler) ask(c *gin.Context, query quoteapp.GetQuoteQuery) {
	if query.ListingID == "" {
		respondError(c, h.Logger, errors.Join(errBadRequest, quoteapp.ErrListingRequired))
		return
	}
	result, err := queries.Ask[quoteapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}
