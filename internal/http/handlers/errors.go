package handlers

import (
	"errors"
	"net/http"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/http/middleware"
	"cruisebooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads for new handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// businessCodes names the sentinel carried by a 4xx response.
var businessCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInsufficientInventory, "insufficient_inventory"},
	{domain.ErrCapacityExceeded, "capacity_exceeded"},
	{domain.ErrInvalidDepartureDate, "invalid_departure_date"},
	{domain.ErrAlreadyTerminal, "already_terminal"},
	{domain.ErrConflictingSettlement, "conflicting_settlement"},
	{domain.ErrIllegalStateTransition, "illegal_state_transition"},
	{domain.ErrUnknownItinerary, "unknown_itinerary"},
	{domain.ErrDivision, "division_by_zero"},
}

func businessCode(err error, fallback string) string {
	for _, bc := range businessCodes {
		if errors.Is(err, bc.err) {
			return bc.code
		}
	}
	return fallback
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrExpiredCard):
		respondError(c, http.StatusUnprocessableEntity, "expired_card", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidSignature):
		respondError(c, http.StatusUnauthorized, "invalid_signature", err.Error(), nil)
	case domain.IsTransition(err):
		respondError(c, http.StatusConflict, businessCode(err, "conflict"), err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, businessCode(err, "validation_error"), err.Error(), domain.ValidationDetails(err))
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, businessCode(err, "not_found"), err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
