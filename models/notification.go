package models

import (
	"time"
)

const (
	NotificationNewOrder         = "new_order"
	NotificationOrderStatus      = "order_status"
	NotificationDeliveryAssigned = "delivery_assigned"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`
	OrderID   *uint     `gorm:"index" json:"order_id"`
	Kind      string    `gorm:"type:varchar(50);not null" json:"kind"`
	Title     *string   `gorm:"type:varchar(100)" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null" json:"is_read"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
