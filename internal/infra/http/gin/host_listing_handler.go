package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	listingapp "stayhub/internal/app/handlers/listings"
)

type HostListingHTTP interface {
	UpdatePricing(c *gin.Context)
}

type HostListingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

// updatePricingRequest takes amounts in major units. Rates accept a fraction
// (0.1) or a percentage (10).
type updatePricingRequest struct {
	Currency       string           `json:"currency"`
	NightlyRate    *decimal.Decimal `json:"nightly_rate"`
	CleaningFee    *decimal.Decimal `json:"cleaning_fee"`
	ServiceFeeRate *decimal.Decimal `json:"service_fee_rate"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	MaxGuests      int              `json:"max_guests"`
}

func (h HostListingHandler) UpdatePricing(c *gin.Context) {
	host, ok := requireSession(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	var req updatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.UpdatePricingCommand{
		Session:   host,
		ListingID: strings.TrimSpace(c.Param("id")),
		Currency:  req.Currency,
		MaxGuests: req.MaxGuests,
	}
	var err error
	if cmd.NightlyRate, err = requireDecimal("nightly_rate", req.NightlyRate); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.CleaningFee, err = requireDecimal("cleaning_fee", req.CleaningFee); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.ServiceFeeRate, err = requireDecimal("service_fee_rate", req.ServiceFeeRate); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.TaxRate, err = requireDecimal("tax_rate", req.TaxRate); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[listingapp.UpdatePricingCommand, dto.ListingPricing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostListingHTTP = HostListingHandler{}
