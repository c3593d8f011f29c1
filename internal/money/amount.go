// Package money converts locale formatted amounts into decimals and prices
// line items.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is matched by every InvalidAmountError
var ErrInvalidAmount = errors.New("invalid amount")

// InvalidAmountError reports an amount that is not numeric after cleaning
type InvalidAmountError struct {
	Amount   string
	Currency string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("InvalidAmount: %s, %s", e.Amount, e.Currency)
}

// Unwrap lets callers match both the amount error and the validation kind
func (e *InvalidAmountError) Unwrap() []error {
	return []error{ErrInvalidAmount, domain.ErrValidation}
}

// Currencies written with ',' as thousands separator and '.' as decimal point
var dotDecimalCurrencies = map[string]struct{}{
	"INR": {}, "USD": {}, "GBP": {}, "AED": {}, "SAR": {}, "JPY": {},
}

const currencyEUR = "EUR"

// IsFallbackCurrency reports whether amounts in currency are parsed with the
// strip-all-separators fallback, which drops any decimal part.
func IsFallbackCurrency(currency string) bool {
	if currency == currencyEUR {
		return false
	}
	_, ok := dotDecimalCurrencies[currency]
	return !ok
}

// CleanAmount applies the separator policy of currency to s
func CleanAmount(s, currency string) string {
	s = strings.TrimSpace(s)
	switch {
	case currency == currencyEUR:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case !IsFallbackCurrency(currency):
		s = strings.ReplaceAll(s, ",", "")
	default:
		// Legacy compatibility: both separators are dropped, so "12.50" reads as 1250.
		s = strings.NewReplacer(",", "", ".", "").Replace(s)
	}
	return s
}

// ParseAmount turns a raw request value into a decimal.
//
// Numbers are written out in plain notation and then cleaned like strings,
// so 12.5 and "12.5" parse the same in every currency. nil, zero and empty
// strings are 0. A decimal.Decimal has already been parsed and is returned
// unchanged.
func ParseAmount(raw any, currency string) (decimal.Decimal, error) {
	var s string
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case json.Number:
		s = string(v)
	case string:
		s = v
	default:
		return decimal.Zero, &InvalidAmountError{Amount: fmt.Sprint(raw), Currency: currency}
	}
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseCleaned(CleanAmount(s, currency), s, currency)
}

func parseCleaned(cleaned, original, currency string) (decimal.Decimal, error) {
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Amount: original, Currency: currency}
	}
	return d, nil
}

// ParseQuantity parses a plain (not locale formatted) number
func ParseQuantity(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("unsupported quantity %v", raw)
	}
}
