package pricing

import (
	"context"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PricedLine is the outcome of pricing one LineRequest.
// TotalPrice is a unit price; GrandPrice = TotalPrice * Quantity.
type PricedLine struct {
	MenuItemID     uint
	Name           string
	Description    string
	Price          decimal.Decimal
	Variants       []models.VariantSnapshot
	Addons         []models.AddonSnapshot
	Charges        []models.ChargeBreakdown
	VariantsAmount decimal.Decimal
	AddonsAmount   decimal.Decimal
	TaxAmount      decimal.Decimal
	ChargeAmount   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalPrice     decimal.Decimal
	Quantity       int
	GrandPrice     decimal.Decimal
}

// OrderItem converts the line into its persisted form.
func (l *PricedLine) OrderItem() models.OrderItem {
	return models.OrderItem{
		MenuItemID:     l.MenuItemID,
		Name:           l.Name,
		Description:    l.Description,
		Price:          l.Price,
		Variants:       datatypes.NewJSONType(l.Variants),
		Addons:         datatypes.NewJSONType(l.Addons),
		Charges:        datatypes.NewJSONType(l.Charges),
		VariantsAmount: l.VariantsAmount,
		AddonsAmount:   l.AddonsAmount,
		TaxAmount:      l.TaxAmount,
		ChargeAmount:   l.ChargeAmount,
		DiscountAmount: l.DiscountAmount,
		TotalPrice:     l.TotalPrice,
		Quantity:       l.Quantity,
		GrandPrice:     l.GrandPrice,
	}
}

type Pricer struct {
	catalog Catalog
}

func NewPricer(catalog Catalog) *Pricer {
	return &Pricer{catalog: catalog}
}

// PriceLine prices a single cart line. Only a missing or unavailable menu item fails the line;
// variants and addons that cannot be resolved are dropped without error.
func (p *Pricer) PriceLine(ctx context.Context, req LineRequest) (*PricedLine, error) {
	if req.Quantity < 1 {
		return nil, utils.Validation("quantity must be at least 1")
	}

	item, err := p.catalog.AvailableMenuItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, err
	}

	variants, variantPrice, err := p.resolveVariants(ctx, item.ID, req.Variants)
	if err != nil {
		return nil, err
	}
	addons, addonPrice, err := p.resolveAddons(ctx, item.ID, req.Addons)
	if err != nil {
		return nil, err
	}

	basePrice := item.Price
	discount := ResolveDiscount(item.DiscountType, item.Discount, basePrice, variantPrice)

	chargeBase := basePrice.Add(variantPrice).Add(addonPrice).Sub(discount)
	charges := AggregateCharges(availableCharges(item.Charges), chargeBase, req.Quantity)

	totalPrice := basePrice.
		Add(charges.Tax).
		Add(charges.Charge).
		Add(variantPrice).
		Add(addonPrice).
		Sub(discount)

	return &PricedLine{
		MenuItemID:     item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Price:          basePrice,
		Variants:       variants,
		Addons:         addons,
		Charges:        charges.Breakdown,
		VariantsAmount: variantPrice,
		AddonsAmount:   addonPrice,
		TaxAmount:      charges.Tax,
		ChargeAmount:   charges.Charge,
		DiscountAmount: discount,
		TotalPrice:     totalPrice,
		Quantity:       req.Quantity,
		GrandPrice:     totalPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
	}, nil
}

// resolveVariants sums the prices of the requested options of every resolvable variant.
// allow_multiple is a hint for ordering screens and is not enforced here.
func (p *Pricer) resolveVariants(ctx context.Context, menuItemID uint, selections []VariantSelection) ([]models.VariantSnapshot, decimal.Decimal, error) {
	snapshots := []models.VariantSnapshot{}
	total := decimal.Zero

	for _, sel := range selections {
		variant, err := p.catalog.AvailableVariant(ctx, menuItemID, sel.VariantID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if variant == nil {
			continue
		}

		wanted := make(map[uint]bool, len(sel.OptionIDs))
		for _, id := range sel.OptionIDs {
			wanted[id] = true
		}

		snap := models.VariantSnapshot{
			VariantID: variant.ID,
			Name:      variant.Name,
			Options:   []models.OptionSnapshot{},
			Price:     decimal.Zero,
		}
		for _, opt := range variant.Options {
			if !wanted[opt.ID] {
				continue
			}
			snap.Options = append(snap.Options, models.OptionSnapshot{OptionID: opt.ID, Name: opt.Name, Price: opt.Price})
			snap.Price = snap.Price.Add(opt.Price)
		}
		if len(snap.Options) == 0 {
			continue
		}

		snapshots = append(snapshots, snap)
		total = total.Add(snap.Price)
	}
	return snapshots, total, nil
}

// resolveAddons prices every resolvable addon by its own sub quantity (minimum 1).
func (p *Pricer) resolveAddons(ctx context.Context, menuItemID uint, selections []AddonSelection) ([]models.AddonSnapshot, decimal.Decimal, error) {
	snapshots := []models.AddonSnapshot{}
	total := decimal.Zero

	for _, sel := range selections {
		addon, err := p.catalog.AvailableAddon(ctx, menuItemID, sel.AddonID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if addon == nil {
			continue
		}

		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		grand := addon.Price.Mul(decimal.NewFromInt(int64(qty)))
		snapshots = append(snapshots, models.AddonSnapshot{
			AddonID:    addon.ID,
			Name:       addon.Name,
			Price:      addon.Price,
			Quantity:   qty,
			GrandPrice: grand,
		})
		total = total.Add(grand)
	}
	return snapshots, total, nil
}

func availableCharges(charges []models.Charge) []models.Charge {
	out := make([]models.Charge, 0, len(charges))
	for _, c := range charges {
		if c.IsAvailable {
			out = append(out, c)
		}
	}
	return out
}
