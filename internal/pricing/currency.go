package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupeeSymbol = "₹"

var indianEnglish = language.MustParse("en-IN")

// FormatINR renders an amount as Indian rupees with Indian digit grouping
// and two fraction digits, e.g. "₹1,23,456.50". Non-finite amounts render "".
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	p := message.NewPrinter(indianEnglish)
	digits := p.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	return sign + rupeeSymbol + digits
}

// FormatINRPtr formats a numeric amount and returns "" when it is absent
func FormatINRPtr(amount *float64) string {
	if amount == nil {
		return ""
	}
	return FormatINR(*amount)
}
