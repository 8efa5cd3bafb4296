package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	listingapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
)

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Pricing(c *gin.Context)
	Calendar(c *gin.Context)
}

// ListingHandler wires listing queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Catalog responds with a filtered collection of active listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.SearchCatalogQuery{
		City:      c.Query("city"),
		MinGuests: parseInt(c.Query("min_guests")),
		Limit:     parseIntWithDefault(c.Query("limit"), 24),
		Offset:    parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Pricing(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.GetPricingQuery{ListingID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[listingapp.GetPricingQuery, dto.ListingPricing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
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
	query := listingapp.GetCalendarQuery{ListingID: strings.TrimSpace(c.Param("id")), From: from, To: to}
	result, err := queries.Ask[listingapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}
