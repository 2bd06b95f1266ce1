package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatCurrency renders "BRL 1.234,50" style amounts used on documents.
func FormatCurrency(currency string, amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "BRL"
	}
	return fmt.Sprintf("%s %s%s,%02d", code, sign, formatThousand(whole), frac)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
