package services

import (
	"context"
	"errors"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"gorm.io/gorm"
)

// GormCatalog resolves available catalog rows for the pricer.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) AvailableMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := c.db.WithContext(ctx).
		Preload("Charges", "is_available = ?", true).
		Where("id = ? AND is_available = ?", id, true).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("menu item not found")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *GormCatalog) AvailableVariant(ctx context.Context, menuItemID, variantID uint) (*models.Variant, error) {
	var variant models.Variant
	err := c.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Joins("JOIN menu_item_variants ON menu_item_variants.variant_id = variants.id").
		Where("menu_item_variants.menu_item_id = ? AND variants.id = ? AND variants.is_available = ?", menuItemID, variantID, true).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (c *GormCatalog) AvailableAddon(ctx context.Context, menuItemID, addonID uint) (*models.Addon, error) {
	var addon models.Addon
	err := c.db.WithContext(ctx).
		Joins("JOIN menu_item_addons ON menu_item_addons.addon_id = addons.id").
		Where("menu_item_addons.menu_item_id = ? AND addons.id = ? AND addons.is_available = ?", menuItemID, addonID, true).
		First(&addon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addon, nil
}
