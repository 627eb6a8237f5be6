package service

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders reply texts under the bot's locale and currency
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a formatter for a BCP 47 locale tag and an ISO 4217
// currency code. Unparseable values fall back to English and BRL
func NewFormatter(locale, cur string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(cur)
	if err != nil {
		unit = currency.BRL
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}
}

// Sold renders the headline forecast reply. The store id skips the
// printer so it never picks up digit grouping
func (f *Formatter) Sold(store int64, total float64, horizonDays int) string {
	weeks := 6
	if horizonDays > 0 {
		weeks = (horizonDays + 6) / 7
	}
	return f.printer.Sprintf("Store %s will sell %v %v in the next %d weeks.",
		strconv.FormatInt(store, 10),
		currency.Symbol(f.unit),
		number.Decimal(total, number.MinFractionDigits(2), number.MaxFractionDigits(2)),
		weeks,
	)
}
