// Package pricing turns cart lines into priced order lines and order totals.
// Everything here is pure arithmetic over catalog rows supplied through Catalog.
package pricing

import (
	"context"

	"github.com/satouyama/pesto-sub001/models"
)

// Catalog resolves the catalog rows a line refers to. Only currently available rows are returned.
//
// AvailableMenuItem returns a utils.ErrNotFound error when the item is missing or unavailable,
// and the returned item carries its available charges. AvailableVariant and AvailableAddon
// return (nil, nil) when the row cannot be resolved for that menu item.
type Catalog interface {
	AvailableMenuItem(ctx context.Context, id uint) (*models.MenuItem, error)
	AvailableVariant(ctx context.Context, menuItemID, variantID uint) (*models.Variant, error)
	AvailableAddon(ctx context.Context, menuItemID, addonID uint) (*models.Addon, error)
}

// LineRequest is one cart entry as received from a client.
type LineRequest struct {
	MenuItemID uint               `json:"menu_item_id" binding:"required"`
	Quantity   int                `json:"quantity" binding:"required,min=1"`
	Variants   []VariantSelection `json:"variants"`
	Addons     []AddonSelection   `json:"addons"`
}

type VariantSelection struct {
	VariantID uint   `json:"variant_id"`
	OptionIDs []uint `json:"option_ids"`
}

type AddonSelection struct {
	AddonID  uint `json:"addon_id"`
	Quantity int  `json:"quantity"`
}
