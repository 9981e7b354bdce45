package utils

import (
	ierr "invoicing-backend/errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Supported invoice currencies and the symbol printed for each.
var currencySymbols = map[currency.Unit]string{
	currency.USD: "$",
	currency.EUR: "€",
}

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// Round2 rounds x half away from zero to 2 decimal places.
func Round2(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// HasCents reports whether x has at most 2 decimal places.
func HasCents(x decimal.Decimal) bool {
	return x.Equal(x.Round(2))
}

// IsSupportedCurrency reports whether code is one of the invoice currencies.
func IsSupportedCurrency(code string) bool {
	_, err := parseCurrency(code)
	return err == nil
}

// FormatCurrency renders amount the way an en-US locale formats a currency
// value, e.g. "$1,234.50" or "-€3.00".
func FormatCurrency(amount decimal.Decimal, code string) (string, error) {
	unit, err := parseCurrency(code)
	if err != nil {
		return "", err
	}

	scale, _ := currency.Standard.Rounding(unit)
	rounded := amount.Round(int32(scale))

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	digits := moneyPrinter.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(scale)))
	return sign + currencySymbols[unit] + digits, nil
}

// MustFormatCurrency is FormatCurrency for codes already validated upstream.
func MustFormatCurrency(amount decimal.Decimal, code string) string {
	s, err := FormatCurrency(amount, code)
	if err != nil {
		panic(err)
	}
	return s
}

func parseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, ierr.WithError(err).
			WithHintf("unsupported currency %q", code).
			Mark(ierr.ErrConfiguration)
	}
	if _, ok := currencySymbols[unit]; !ok {
		return currency.Unit{}, ierr.NewErrorf("currency %s is not enabled", code).
			WithHintf("unsupported currency %q", code).
			Mark(ierr.ErrConfiguration)
	}
	return unit, nil
}
