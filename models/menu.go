package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypeAmount     = "amount"
	DiscountTypePercentage = "percentage"
)

// MenuItem is a sellable catalog entry. Charges, Variants and Addons are attached through join tables.
type MenuItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Discount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	DiscountType string          `gorm:"type:varchar(20)" json:"discount_type"`
	IsAvailable  bool            `gorm:"not null" json:"is_available"`
	FoodType     string          `gorm:"type:varchar(50)" json:"food_type"`
	Charges      []Charge        `gorm:"many2many:menu_item_charges;" json:"charges,omitempty"`
	Variants     []Variant       `gorm:"many2many:menu_item_variants;" json:"variants,omitempty"`
	Addons       []Addon         `gorm:"many2many:menu_item_addons;" json:"addons,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const (
	VariantRequired = "required"
	VariantOptional = "optional"
)

type Variant struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Requirement   string          `gorm:"type:varchar(20);not null;default:'optional'" json:"requirement"`
	AllowMultiple bool            `gorm:"not null" json:"allow_multiple"`
	IsAvailable   bool            `gorm:"not null" json:"is_available"`
	Options       []VariantOption `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type VariantOption struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	VariantID uint            `gorm:"not null;index" json:"variant_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Position  int             `gorm:"not null;default:0" json:"position"`
}

type Addon struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const (
	ChargeTypeTax    = "tax"
	ChargeTypeCharge = "charge"

	AmountTypePercentage = "percentage"
	AmountTypeAmount     = "amount"
)

// Charge is a tax or fee definition. Type "tax" feeds the order's total tax, anything else its total charges.
type Charge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Type        string          `gorm:"type:varchar(20);not null;default:'tax'" json:"type"`
	AmountType  string          `gorm:"type:varchar(20);not null;default:'percentage'" json:"amount_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
