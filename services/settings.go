package services

import (
	"context"
	"errors"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BusinessConfig is a read-only snapshot of the business settings, taken once per request.
type BusinessConfig struct {
	DeliveryCharge       decimal.Decimal
	GuestCheckoutAllowed bool
	Currency             string
}

type SettingsSource interface {
	Current(ctx context.Context) (BusinessConfig, error)
}

// GormSettings reads the settings row, falling back to the configured defaults when it is missing.
type GormSettings struct {
	db       *gorm.DB
	fallback BusinessConfig
}

func NewGormSettings(db *gorm.DB, fallback BusinessConfig) *GormSettings {
	return &GormSettings{db: db, fallback: fallback}
}

func (s *GormSettings) Current(ctx context.Context) (BusinessConfig, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Order("id asc").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.fallback, nil
	}
	if err != nil {
		return BusinessConfig{}, err
	}
	return BusinessConfig{
		DeliveryCharge:       setting.DeliveryCharge,
		GuestCheckoutAllowed: setting.GuestCheckoutAllowed,
		Currency:             setting.Currency,
	}, nil
}
