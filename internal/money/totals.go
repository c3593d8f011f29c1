package money

import (
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices items in currency: amount = rate * quantity,
// vat = subtotal * vatRate / 100, total = subtotal + vat.
// With requirePositiveQty a quantity <= 0 is rejected.
func ComputeTotals(items []domain.LineItemInput, currency string, vatRate float64, requirePositiveQty bool) (domain.Totals, error) {
	subtotal := decimal.Zero
	out := make(domain.LineItems, 0, len(items))

	for _, item := range items {
		rate, err := ParseAmount(item.Rate, currency)
		if err != nil {
			return domain.Totals{}, err
		}
		qty, err := ParseQuantity(item.Quantity)
		if err != nil {
			return domain.Totals{}, domain.Validation("Invalid quantity")
		}
		if requirePositiveQty && !qty.IsPositive() {
			return domain.Totals{}, domain.Validation("Invalid quantity")
		}

		amount := rate.Mul(qty)
		subtotal = subtotal.Add(amount)
		out = append(out, domain.LineItem{
			Description: item.Description,
			Quantity:    qty.InexactFloat64(),
			Rate:        rate.InexactFloat64(),
			Amount:      amount.InexactFloat64(),
		})
	}

	vat := subtotal.Mul(decimal.NewFromFloat(vatRate)).Div(hundred)
	return domain.Totals{
		Items:     out,
		VATRate:   vatRate,
		Subtotal:  subtotal.InexactFloat64(),
		VATAmount: vat.InexactFloat64(),
		Total:     subtotal.Add(vat).InexactFloat64(),
	}, nil
}

// ItemsFromLineItems converts stored items back into inputs, e.g. when an
// invoice is raised from an estimate. Stored rates are already parsed and
// skip the currency separator policy.
func ItemsFromLineItems(items domain.LineItems) []domain.LineItemInput {
	out := make([]domain.LineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, domain.LineItemInput{Description: it.Description, Quantity: it.Quantity, Rate: decimal.NewFromFloat(it.Rate)})
	}
	return out
}

// WithinTolerance reports whether two amounts differ by at most 0.01
func WithinTolerance(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().LessThanOrEqual(decimal.New(1, -2))
}
