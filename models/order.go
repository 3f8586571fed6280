package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusReady      = "ready"
	OrderStatusOnDelivery = "on_delivery"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
	OrderStatusFailed     = "failed"
)

const (
	PaymentTypeCash   = "cash"
	PaymentTypeCard   = "card"
	PaymentTypePayPal = "paypal"
	PaymentTypeStripe = "stripe"
)

type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderNumber      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_number"`
	UserID           *uint           `gorm:"index" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`
	Type             string          `gorm:"type:varchar(20);not null" json:"type"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentType      string          `gorm:"type:varchar(20);not null" json:"payment_type"`
	PaymentStatus    bool            `gorm:"not null" json:"payment_status"`
	PaymentReference string          `gorm:"type:varchar(255);index" json:"payment_reference,omitempty"`
	PaymentInfo      datatypes.JSON  `json:"payment_info,omitempty"`
	TotalQuantity    int             `gorm:"not null" json:"total_quantity"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	TotalTax         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_tax"`
	TotalCharges     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_charges"`
	Discount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	ManualDiscount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"manual_discount"`
	DeliveryCharge   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"delivery_charge"`
	GrandTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	DeliveryManID    *uint           `gorm:"index" json:"delivery_man_id"`
	DeliveryMan      *User           `gorm:"foreignKey:DeliveryManID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"delivery_man,omitempty"`
	DeliveryDate     *time.Time      `json:"delivery_date,omitempty"`
	CustomerNote     string          `gorm:"type:text" json:"customer_note"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Charges          []OrderCharge   `gorm:"foreignKey:OrderID" json:"charges"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ComputedGrandTotal folds the aggregate fields the same way the totalizer does.
func (o *Order) ComputedGrandTotal() decimal.Decimal {
	return o.Total.
		Add(o.TotalTax).
		Add(o.TotalCharges).
		Add(o.DeliveryCharge).
		Sub(o.Discount).
		Sub(o.ManualDiscount)
}

func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}

// RequiresGateway reports whether the payment type is settled by an external provider.
func (o *Order) RequiresGateway() bool {
	return IsGatewayPaymentType(o.PaymentType)
}

func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusCanceled, OrderStatusFailed:
		return true
	}
	return false
}

func IsGatewayPaymentType(paymentType string) bool {
	return paymentType != PaymentTypeCash && paymentType != PaymentTypeCard
}

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusReady, OrderStatusOnDelivery,
		OrderStatusCompleted, OrderStatusCanceled, OrderStatusFailed:
		return true
	}
	return false
}
