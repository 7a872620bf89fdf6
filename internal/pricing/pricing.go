// Package pricing computes the cart-level totals. It prices the cart itself,
// not any particular provider's quote.
package pricing

import (
	"math"

	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// DefaultTaxRate is the flat tax applied to the cart subtotal.
const DefaultTaxRate = 0.05

// CalculateTax computes tax on a subtotal, rounded to the nearest unit.
func CalculateTax(subtotal, taxRate float64) float64 {
	return math.Round(subtotal * taxRate)
}

// Compute derives the full price breakdown for the cart. A package without a
// fixed price contributes zero to the subtotal; the coupon discount is capped
// at the subtotal so the pre-tax amount can never go negative.
func Compute(items []models.CartItem, cat *catalog.Snapshot, coupon *models.Coupon, taxRate float64) models.PriceSummary {
	var subtotal float64
	for _, item := range items {
		pkg, ok := cat.Package(item.ServiceID)
		if !ok {
			continue
		}
		subtotal += pkg.Price * float64(item.Quantity)
	}

	var discount float64
	if coupon != nil && coupon.AmountOff > 0 {
		discount = math.Min(coupon.AmountOff, subtotal)
	}

	tax := CalculateTax(subtotal, taxRate)

	return models.PriceSummary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}
