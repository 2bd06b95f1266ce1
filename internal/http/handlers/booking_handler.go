package handlers

import (
	"net/http"
	"strings"

	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/http/middleware"
	"cruisebooking/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateBooking answers POST /api/bookings.
func CreateBooking(c *gin.Context) {
	var in services.CreateBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	b, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func ListBookings(c *gin.Context) {
	f := models.BookingFilter{
		CustomerEmail: strings.TrimSpace(c.Query("customer_email")),
		Status:        models.BookingStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
	}
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	list, err := svc.List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetBooking(c *gin.Context) {
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	b, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking answers DELETE /api/bookings/:id. The record is kept.
func CancelBooking(c *gin.Context) {
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	b, err := svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBooking is operator only.
func CompleteBooking(c *gin.Context) {
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	b, err := svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RequestBookingPayment answers POST /api/bookings/:id/payment with the
// payment link the customer is sent to.
func RequestBookingPayment(c *gin.Context) {
	svc := current().Payments
	svc.RequestID = middleware.GetRequestID(c)
	h, err := svc.Initiate(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}
