package money

import (
	"errors"
	"testing"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		currency string
		want     string
	}{
		{"usd thousands", "1,234.56", "USD", "1234.56"},
		{"inr lakh grouping", "1,23,456.78", "INR", "123456.78"},
		{"jpy whole", "12,000", "JPY", "12000"},
		{"eur swapped separators", "1.234,56", "EUR", "1234.56"},
		{"eur plain comma", "12,5", "EUR", "12.5"},
		{"unknown currency strips both", "1,234.56", "CHF", "123456"},
		{"empty currency strips both", "12.50", "", "1250"},
		{"nil is zero", nil, "USD", "0"},
		{"empty string is zero", "", "USD", "0"},
		{"blank string is zero", "   ", "EUR", "0"},
		{"usd number", 12.5, "USD", "12.5"},
		{"eur number follows the string policy", 12.5, "EUR", "125"},
		{"unknown currency number follows the string policy", 12.5, "CAD", "125"},
		{"int", 42, "CHF", "42"},
		{"zero number", 0.0, "USD", "0"},
		{"parsed decimal kept", decimal.RequireFromString("3.5"), "EUR", "3.5"},
		{"surrounding spaces", " 99.90 ", "GBP", "99.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.currency)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_NumberMatchesString(t *testing.T) {
	for _, c := range []string{"USD", "EUR", "CAD", ""} {
		fromNumber, err := ParseAmount(12.5, c)
		require.NoError(t, err)
		fromString, err := ParseAmount("12.5", c)
		require.NoError(t, err)
		assert.True(t, fromString.Equal(fromNumber), "%s: %s vs %s", c, fromNumber, fromString)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	_, err := ParseAmount("abc", "USD")
	require.Error(t, err)

	var amountErr *InvalidAmountError
	require.True(t, errors.As(err, &amountErr))
	assert.Equal(t, "InvalidAmount: abc, USD", err.Error())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseAmount([]int{1}, "USD")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestIsFallbackCurrency(t *testing.T) {
	for _, c := range []string{"INR", "USD", "GBP", "AED", "SAR", "JPY", "EUR"} {
		assert.False(t, IsFallbackCurrency(c), c)
	}
	assert.True(t, IsFallbackCurrency("CHF"))
	assert.True(t, IsFallbackCurrency(""))
}

func TestComputeTotals(t *testing.T) {
	items := []domain.LineItemInput{
		{Description: "Artwork", Quantity: float64(2), Rate: "1,000.50"},
		{Description: "Proof", Quantity: "3", Rate: 100.0},
	}

	totals, err := ComputeTotals(items, "USD", 5, true)
	require.NoError(t, err)

	require.Len(t, totals.Items, 2)
	assert.Equal(t, domain.LineItem{Description: "Artwork", Quantity: 2, Rate: 1000.5, Amount: 2001}, totals.Items[0])
	assert.Equal(t, 300.0, totals.Items[1].Amount)
	assert.InDelta(t, 2301.0, totals.Subtotal, 0.0001)
	assert.InDelta(t, 115.05, totals.VATAmount, 0.0001)
	assert.InDelta(t, 2416.05, totals.Total, 0.0001)
	assert.Equal(t, 5.0, totals.VATRate)
}

func TestComputeTotals_RejectsNonPositiveQuantity(t *testing.T) {
	items := []domain.LineItemInput{{Description: "x", Quantity: float64(0), Rate: "10"}}

	_, err := ComputeTotals(items, "USD", 0, true)
	assert.ErrorIs(t, err, domain.ErrValidation)

	totals, err := ComputeTotals(items, "USD", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, totals.Total)
}

func TestComputeTotals_PropagatesAmountError(t *testing.T) {
	items := []domain.LineItemInput{{Description: "x", Quantity: float64(1), Rate: "ten"}}

	_, err := ComputeTotals(items, "USD", 0, true)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(100.00, 100.01))
	assert.True(t, WithinTolerance(0.1+0.2, 0.3))
	assert.False(t, WithinTolerance(100.00, 100.02))
}

func TestItemsFromLineItems(t *testing.T) {
	in := domain.LineItems{{Description: "a", Quantity: 2, Rate: 3.5, Amount: 7}}
	out := ItemsFromLineItems(in)

	totals, err := ComputeTotals(out, "EUR", 0, true)
	require.NoError(t, err)
	assert.Equal(t, in, totals.Items)
}
