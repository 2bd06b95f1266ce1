package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cruisebooking/internal/http/middleware"
	"cruisebooking/internal/services"

	"github.com/gin-gonic/gin"
)

// FlexInt accepts 7, "7" and "07". Set reports whether the field was present.
type FlexInt struct {
	Value int
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" || len(b) == 0 {
		*f = FlexInt{}
		return nil
	}
	raw := string(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", string(b))
	}
	*f = FlexInt{Value: n, Set: true}
	return nil
}

type cardPayload struct {
	Number      *string `json:"number"`
	ExpiryMonth FlexInt `json:"expiry_month"`
	ExpiryYear  FlexInt `json:"expiry_year"`
	CVV         *string `json:"cvv"`
	HolderName  *string `json:"holder_name"`
}

func (p cardPayload) missing() string {
	switch {
	case p.Number == nil:
		return "number"
	case !p.ExpiryMonth.Set:
		return "expiry_month"
	case !p.ExpiryYear.Set:
		return "expiry_year"
	case p.CVV == nil:
		return "cvv"
	case p.HolderName == nil:
		return "holder_name"
	}
	return ""
}

// SubmitPayment answers POST /api/payments/:id, the payment page form.
func SubmitPayment(c *gin.Context) {
	var p cardPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if field := p.missing(); field != "" {
		respondError(c, http.StatusBadRequest, "missing_card_field", "missing required card field: "+field, nil)
		return
	}

	svc := current().Payments
	svc.RequestID = middleware.GetRequestID(c)
	res, err := svc.Submit(c.Request.Context(), c.Param("id"), services.CardSubmission{
		Number:      *p.Number,
		ExpiryMonth: p.ExpiryMonth.Value,
		ExpiryYear:  p.ExpiryYear.Value,
		CVV:         *p.CVV,
		HolderName:  *p.HolderName,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func GetPayment(c *gin.Context) {
	svc := current().Payments
	svc.RequestID = middleware.GetRequestID(c)
	p, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PaymentWebhook receives signed settlements from the payment network.
func PaymentWebhook(c *gin.Context) {
	var n services.WebhookNotification
	if !BindJSONOrError(c, &n) {
		return
	}
	if strings.TrimSpace(n.PaymentID) == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "payment_id is required", nil)
		return
	}

	svc := current().Payments
	svc.RequestID = middleware.GetRequestID(c)
	b, err := svc.HandleWebhook(c.Request.Context(), n)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": b.Status, "booking_id": b.ID})
}
