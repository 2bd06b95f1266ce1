package handlers

import (
	"net/http"
	"strconv"

	"cruisebooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GetTicketPDF streams one ticket of a paid booking inline.
func GetTicketPDF(c *gin.Context) {
	ticketID, err := strconv.Atoi(c.Param("ticket_id"))
	if err != nil || ticketID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_ticket_id", "invalid ticket id", nil)
		return
	}
	svc := current().Docs
	svc.RequestID = middleware.GetRequestID(c)
	pdfBytes, filename, err := svc.GenerateTicketPDF(c.Request.Context(), c.Param("id"), ticketID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
