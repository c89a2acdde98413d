package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrTooPrecise          = errors.New("amount has more decimal places than the currency allows")
	ErrAmountOutOfRange    = errors.New("amount is out of range")
)

// exponents maps ISO 4217 codes to the number of minor-unit digits.
var exponents = map[string]int32{
	"INR": 2, "USD": 2, "EUR": 2, "GBP": 2, "AUD": 2, "CAD": 2, "SGD": 2,
	"AED": 2, "CHF": 2, "CNY": 2, "HKD": 2, "MYR": 2, "NZD": 2, "SEK": 2,
	"LKR": 2, "NPR": 2, "BDT": 2, "ZAR": 2,
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "ISK": 0, "UGX": 0,
	"BHD": 3, "KWD": 3, "OMR": 3, "JOD": 3, "TND": 3,
}

var (
	minUnits = decimal.NewFromInt(1)
	maxUnits = decimal.NewFromInt(math.MaxInt64)
)

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Exponent returns the minor-unit exponent for code.
func Exponent(code string) (int32, error) {
	e, ok := exponents[Normalize(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return e, nil
}

// ToMinor converts a major-unit amount into the currency's smallest unit.
// Amounts that would need rounding are rejected rather than silently rounded,
// as are amounts whose minor value does not fit in [1, MaxInt64].
func ToMinor(amount decimal.Decimal, code string) (int64, error) {
	exp, err := Exponent(code)
	if err != nil {
		return 0, err
	}
	minor := amount.Shift(exp)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s %s", ErrTooPrecise, amount.String(), Normalize(code))
	}
	if minor.LessThan(minUnits) || minor.GreaterThan(maxUnits) {
		return 0, fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, amount.String(), Normalize(code))
	}
	return minor.IntPart(), nil
}

// FromMinor is the inverse of ToMinor.
func FromMinor(minor int64, code string) (decimal.Decimal, error) {
	exp, err := Exponent(code)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(minor, -exp), nil
}
