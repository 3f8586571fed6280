package pricing

import (
	"github.com/satouyama/pesto-sub001/models"
	"github.com/shopspring/decimal"
)

// ResolveDiscount returns the per unit catalog discount of a menu item.
// Percentage discounts apply to base price plus variant price; flat discounts ignore both.
func ResolveDiscount(discountType string, discount, basePrice, variantPrice decimal.Decimal) decimal.Decimal {
	switch discountType {
	case models.DiscountTypePercentage:
		return basePrice.Add(variantPrice).Mul(discount).Div(hundred).Round(2)
	case models.DiscountTypeAmount:
		return discount.Round(2)
	default:
		return decimal.Zero
	}
}
