package handlers

import (
	"net/http"

	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ApplyPromotion is operator only. The response carries how many subscribers
// were notified.
func ApplyPromotion(c *gin.Context) {
	var in models.PromotionInput
	if !BindJSONOrError(c, &in) {
		return
	}
	svc := current().Promotions
	svc.RequestID = middleware.GetRequestID(c)
	applied, err := svc.Apply(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, applied)
}
