package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderItem is one priced line. The JSON snapshot columns keep the selection as it was priced,
// so later catalog edits never change a historical order.
type OrderItem struct {
	ID             uint                                  `gorm:"primaryKey" json:"id"`
	OrderID        uint                                  `gorm:"not null;index" json:"order_id"`
	Order          *Order                                `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID     uint                                  `gorm:"not null;index" json:"menu_item_id"`
	Name           string                                `gorm:"type:varchar(255);not null" json:"name"`
	Description    string                                `gorm:"type:text" json:"description"`
	Price          decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"price"`
	Variants       datatypes.JSONType[[]VariantSnapshot] `json:"variants"`
	Addons         datatypes.JSONType[[]AddonSnapshot]   `json:"addons"`
	Charges        datatypes.JSONType[[]ChargeBreakdown] `json:"charges"`
	AddonsAmount   decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"addons_amount"`
	VariantsAmount decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"variants_amount"`
	TaxAmount      decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	ChargeAmount   decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"charge_amount"`
	DiscountAmount decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	TotalPrice     decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Quantity       int                                   `gorm:"not null" json:"quantity"`
	GrandPrice     decimal.Decimal                       `gorm:"type:decimal(12,2);not null" json:"grand_price"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
}

type VariantSnapshot struct {
	VariantID uint             `json:"variant_id"`
	Name      string           `json:"name"`
	Options   []OptionSnapshot `json:"options"`
	Price     decimal.Decimal  `json:"price"`
}

type OptionSnapshot struct {
	OptionID uint            `json:"option_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

type AddonSnapshot struct {
	AddonID    uint            `json:"addon_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	GrandPrice decimal.Decimal `json:"grand_price"`
}

// ChargeBreakdown is one tax/charge entry of a line. Amount is already multiplied by the line quantity.
type ChargeBreakdown struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}
