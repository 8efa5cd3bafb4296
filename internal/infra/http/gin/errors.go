package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"stayhub/internal/app/commands"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingapp "stayhub/internal/app/handlers/listings"
	quoteapp "stayhub/internal/app/handlers/quotes"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/queries"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	var rejected *domainbooking.QuoteRejectedError
	switch {
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, domainbooking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, listingapp.ErrListingNotOwned),
		errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrDatesUnavailable),
		errors.Is(err, domainbooking.ErrListingUnavailable),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, middleware.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case isValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, quoteapp.ErrListingRequired),
		errors.Is(err, bookingapp.ErrListingRequired),
		errors.Is(err, bookingapp.ErrBookingIDRequired),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, domainlistings.ErrGuestsLimit),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrCleaningFee),
		errors.Is(err, domainlistings.ErrFeeRate),
		errors.Is(err, domainlistings.ErrCurrency),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, errBadRequest):
		return true
	}
	return false
}

var errBadRequest = errors.New("bad request")

// respondError writes the mapped status with a gin.H error body. Quote
// rejections carry every validation message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if s := currentSession(c); s.Authenticated() {
			fields = append(fields, "user_id", s.UserID)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
	}
	var rejected *domainbooking.QuoteRejectedError
	if errors.As(err, &rejected) {
		c.JSON(status, gin.H{"error": "quote is not valid", "validation_errors": rejected.Reasons})
		return
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
