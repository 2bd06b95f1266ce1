package api

import (
	stdhttp "net/http"

	intconfig "cruisebooking/internal/config"
	"cruisebooking/internal/domain"
	h "cruisebooking/internal/http/handlers"
	"cruisebooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, svcs h.Services) *gin.Engine {
	h.SetServices(svcs)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		zap.L().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	operator := []gin.HandlerFunc{
		middleware.AuthRequired([]byte(env.OperatorJWTSecret)),
		middleware.RequireRoles(domain.RoleOperator, domain.RoleAdmin),
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Itineraries
		itineraries := api.Group("/itineraries")
		itineraries.GET("", h.ListItineraries)
		itineraries.GET("/:id", h.GetItinerary)
		itineraries.GET("/:id/promotion-suggestion", h.GetPromotionSuggestion)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.CancelBooking)
		bookings.POST("/:id/payment", h.RequestBookingPayment)
		bookings.GET("/:id/tickets/:ticket_id/pdf", h.GetTicketPDF)
		bookings.POST("/:id/complete", append(operator, h.CompleteBooking)...)

		// Payments
		payments := api.Group("/payments")
		payments.POST("/webhook", h.PaymentWebhook)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id", h.SubmitPayment)

		// Promotions
		api.POST("/promotions", append(operator, h.ApplyPromotion)...)

		// Marketing
		marketing := api.Group("/marketing")
		marketing.POST("/subscribe", h.Subscribe)
		marketing.DELETE("/unsubscribe", h.Unsubscribe)
	}

	h.SetRouter(r)
	return r
}
