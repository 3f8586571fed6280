package database

import (
	"errors"
	"fmt"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migrate creates or updates every table used by the service.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Charge{},
		&models.Variant{},
		&models.VariantOption{},
		&models.Addon{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCharge{},
		&models.Notification{},
		&models.Setting{},
		&models.PaymentMethod{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// SeedDefaults describes the business settings written on first start.
type SeedDefaults struct {
	BusinessName         string
	Currency             string
	DeliveryCharge       decimal.Decimal
	GuestCheckoutAllowed bool
}

// SeedSettings inserts the single settings row when the table is still empty.
// An existing row is never overwritten.
func SeedSettings(db *gorm.DB, defaults SeedDefaults) error {
	var existing models.Setting
	err := db.Order("id asc").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load settings: %w", err)
	}

	setting := models.Setting{
		BusinessName:         defaults.BusinessName,
		Currency:             defaults.Currency,
		DeliveryCharge:       defaults.DeliveryCharge,
		GuestCheckoutAllowed: defaults.GuestCheckoutAllowed,
	}
	if setting.Currency == "" {
		setting.Currency = "USD"
	}
	if err := db.Create(&setting).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	utils.InfoLogger.WithField("delivery_charge", setting.DeliveryCharge.String()).Info("Default business settings created")
	return nil
}
