package handlers

import (
	"net/http"
	"strings"

	"cruisebooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type subscriberPayload struct {
	UserID string `json:"user_id"`
}

func Subscribe(c *gin.Context) {
	var p subscriberPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if strings.TrimSpace(p.UserID) == "" {
		RespondError(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}
	svc := current().Marketing
	svc.RequestID = middleware.GetRequestID(c)
	if _, err := svc.Subscribe(c.Request.Context(), p.UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed to marketing notifications"})
}

func Unsubscribe(c *gin.Context) {
	var p subscriberPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if strings.TrimSpace(p.UserID) == "" {
		RespondError(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}
	svc := current().Marketing
	svc.RequestID = middleware.GetRequestID(c)
	if _, err := svc.Unsubscribe(c.Request.Context(), p.UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from marketing notifications"})
}
