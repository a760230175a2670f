package usecase

import (
	"strings"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders metric values for display in one locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a Formatter. Unknown locales fall back to pt-BR and
// unknown currency codes to BRL.
func NewFormatter(locale, currencyCode string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.BRL
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}
}

// Date converts YYYY-MM-DD into DD/MM/YYYY; other input is returned as is.
func (f *Formatter) Date(s string) string {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// Count groups thousands.
func (f *Formatter) Count(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Decimal prints up to two fractional digits.
func (f *Formatter) Decimal(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent prints a rate already expressed in percent.
func (f *Formatter) Percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return f.Decimal(*v) + "%"
}

// Currency converts cost micros into currency units.
func (f *Formatter) Currency(micros int64) string {
	amount := float64(micros) / 1_000_000
	symbol := strings.TrimSpace(f.printer.Sprint(currency.Symbol(f.unit)))
	return symbol + " " + f.printer.Sprint(number.Decimal(amount, number.Scale(2)))
}
