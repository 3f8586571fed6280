package pricing

import (
	"context"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
)

// Totals is the aggregate of a priced cart.
type Totals struct {
	Lines          []*PricedLine
	Charges        []models.ChargeBreakdown
	TotalQuantity  int
	Total          decimal.Decimal
	TotalTax       decimal.Decimal
	TotalCharges   decimal.Decimal
	Discount       decimal.Decimal
	ManualDiscount decimal.Decimal
	DeliveryCharge decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Totalize prices every line and folds them into order totals. deliveryFee is the business fee,
// applied only to delivery orders. A negative grand total is a validation error.
func (p *Pricer) Totalize(ctx context.Context, items []LineRequest, orderType string, manualDiscount, deliveryFee decimal.Decimal) (*Totals, error) {
	t := &Totals{
		Lines:          make([]*PricedLine, 0, len(items)),
		Charges:        []models.ChargeBreakdown{},
		Total:          decimal.Zero,
		TotalTax:       decimal.Zero,
		TotalCharges:   decimal.Zero,
		Discount:       decimal.Zero,
		ManualDiscount: manualDiscount,
		DeliveryCharge: decimal.Zero,
	}

	for _, req := range items {
		line, err := p.PriceLine(ctx, req)
		if err != nil {
			return nil, err
		}
		qty := decimal.NewFromInt(int64(line.Quantity))

		t.Total = t.Total.Add(line.Price.Add(line.AddonsAmount).Add(line.VariantsAmount).Mul(qty))
		t.TotalTax = t.TotalTax.Add(line.TaxAmount.Mul(qty))
		t.TotalCharges = t.TotalCharges.Add(line.ChargeAmount.Mul(qty))
		t.Discount = t.Discount.Add(line.DiscountAmount.Mul(qty))
		t.TotalQuantity += line.Quantity
		t.Charges = append(t.Charges, line.Charges...)
		t.Lines = append(t.Lines, line)
	}

	if orderType == models.OrderTypeDelivery {
		t.DeliveryCharge = deliveryFee
	}

	t.GrandTotal = t.Total.
		Add(t.TotalTax).
		Add(t.TotalCharges).
		Add(t.DeliveryCharge).
		Sub(t.Discount).
		Sub(t.ManualDiscount)
	if t.GrandTotal.IsNegative() {
		return nil, utils.Validation("grand total cannot be negative")
	}
	return t, nil
}

// OrderCharges returns the per-order charge rows, one per breakdown entry.
func (t *Totals) OrderCharges() []models.OrderCharge {
	out := make([]models.OrderCharge, 0, len(t.Charges))
	for _, c := range t.Charges {
		out = append(out, models.OrderCharge{Name: c.Name, Type: c.Type, Amount: c.Amount})
	}
	return out
}

// OrderItems returns the persisted form of every line.
func (t *Totals) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(t.Lines))
	for _, l := range t.Lines {
		out = append(out, l.OrderItem())
	}
	return out
}
