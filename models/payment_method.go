package models

import (
	"time"
)

// PaymentMethod stores the credentials of one external payment provider.
// Key matches Order.PaymentType ("paypal", "stripe").
type PaymentMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"key"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	Mode      string    `gorm:"type:varchar(20);not null;default:'sandbox'" json:"mode"`
	PublicKey string    `gorm:"type:varchar(255)" json:"-"`
	SecretKey string    `gorm:"type:varchar(255)" json:"-"`
	AccountID string    `gorm:"type:varchar(255)" json:"-"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p PaymentMethod) IsLive() bool {
	return p.Mode == "live"
}
