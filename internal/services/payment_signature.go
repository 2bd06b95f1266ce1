package services

import (
	"fmt"

	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/utils"
)

func paymentCanonical(p models.Payment) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		p.ID, p.BookingID, utils.FormatMoney(p.Amount), p.Currency, p.Status, p.TransactionID, p.CardLast4)
}

// SignPayment returns the integrity token stored on the payment.
func SignPayment(key []byte, p models.Payment) string {
	return utils.Sign(key, []byte(paymentCanonical(p)))
}

func VerifyPayment(key []byte, p models.Payment) bool {
	return utils.VerifySignature(key, []byte(paymentCanonical(p)), p.Signature)
}
