package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
)

type Handlers struct {
	Quote          QuoteHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	HostBooking    HostBookingHTTP
	HostListing    HostListingHTTP
	Me             MeHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine with every route group that has a handler.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			IdempotencyKeyHeader, UserIDHeader, UserRolesHeader, TimezoneHeader,
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id/pricing", h.Listing.Pricing)
		api.GET("/listings/:id/calendar", h.Listing.Calendar)
	}
	if h.Quote != nil {
		api.GET("/listings/:id/quote", h.Quote.Get)
		api.POST("/quotes", h.Quote.Create)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
	}
	hostGroup := api.Group("/host")
	if h.HostBooking != nil {
		hostGroup.GET("/bookings", h.HostBooking.List)
		hostGroup.POST("/bookings/:id/confirm", h.HostBooking.Confirm)
		hostGroup.POST("/bookings/:id/decline", h.HostBooking.Decline)
		hostGroup.GET("/stats", h.HostBooking.Stats)
	}
	if h.HostListing != nil {
		hostGroup.PUT("/listings/:id/pricing", h.HostListing.UpdatePricing)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
