package services

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders minor-unit amounts as localized currency strings.
type MoneyFormatter struct {
	printer *message.Printer
}

// NewMoneyFormatter constructs a formatter for the given display locale.
func NewMoneyFormatter(tag language.Tag) *MoneyFormatter {
	return &MoneyFormatter{printer: message.NewPrinter(tag)}
}

// Format renders a money value with its currency symbol. Unknown currency
// codes fall back to a plain minor-unit rendering.
func (f *MoneyFormatter) Format(m Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%d %s", m.Amount, m.Currency)
	}
	scale, _ := currency.Standard.Rounding(unit)
	major := float64(m.Amount) / math.Pow(10, float64(scale))
	return f.printer.Sprint(currency.Symbol(unit.Amount(major)))
}
