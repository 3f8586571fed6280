package pricing

import (
	"github.com/satouyama/pesto-sub001/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ChargeResult holds the unit level accumulators and the quantity scaled breakdown.
// Tax and Charge are per unit; Breakdown amounts are multiplied by the quantity.
type ChargeResult struct {
	Tax       decimal.Decimal
	Charge    decimal.Decimal
	Breakdown []models.ChargeBreakdown
}

// AggregateCharges applies every charge definition to base.
func AggregateCharges(charges []models.Charge, base decimal.Decimal, quantity int) ChargeResult {
	result := ChargeResult{
		Tax:       decimal.Zero,
		Charge:    decimal.Zero,
		Breakdown: []models.ChargeBreakdown{},
	}
	qty := decimal.NewFromInt(int64(quantity))

	for _, charge := range charges {
		unit := chargeUnitAmount(charge, base)

		kind := models.ChargeTypeCharge
		if charge.Type == models.ChargeTypeTax {
			kind = models.ChargeTypeTax
			result.Tax = result.Tax.Add(unit)
		} else {
			result.Charge = result.Charge.Add(unit)
		}

		result.Breakdown = append(result.Breakdown, models.ChargeBreakdown{
			Name:   charge.Name,
			Type:   kind,
			Amount: unit.Mul(qty),
		})
	}
	return result
}

func chargeUnitAmount(charge models.Charge, base decimal.Decimal) decimal.Decimal {
	if charge.AmountType == models.AmountTypePercentage {
		return base.Mul(charge.Amount).Div(hundred).Round(2)
	}
	return charge.Amount.Round(2)
}
