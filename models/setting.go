package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting holds the business-wide configuration. The table keeps a single row.
type Setting struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	BusinessName         string          `gorm:"type:varchar(255)" json:"business_name"`
	Currency             string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	DeliveryCharge       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"delivery_charge"`
	GuestCheckoutAllowed bool            `gorm:"not null" json:"guest_checkout_allowed"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
