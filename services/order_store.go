package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows order listings. Zero values are ignored.
type OrderFilter struct {
	Statuses      []string
	Type          string
	PaymentStatus *bool
	From          *time.Time
	To            *time.Time
}

// OrderStore persists orders together with their lines and charge rows.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create writes header, lines and charges in one transaction.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	items := order.Items
	charges := order.Charges

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		for i := range charges {
			charges[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
		}
		if len(charges) > 0 {
			if err := tx.Omit(clause.Associations).Create(&charges).Error; err != nil {
				return fmt.Errorf("create order charges: %w", err)
			}
		}
		order.Items = items
		order.Charges = charges
		return nil
	})
}

func (s *OrderStore) FindWithRelations(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Charges").
		Preload("User").
		Preload("DeliveryMan").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save updates the header columns only; lines and charges are never rewritten.
func (s *OrderStore) Save(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// Delete removes the order and everything it owns.
func (s *OrderStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderCharge{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("order not found")
		}
		return nil
	})
}

func (s *OrderStore) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Preload("User").Preload("DeliveryMan")
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var orders []models.Order
	if err := query.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ActivePaymentMethod returns the active configuration for a provider key.
func (s *OrderStore) ActivePaymentMethod(ctx context.Context, key string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := s.db.WithContext(ctx).Where(&models.PaymentMethod{Key: key, IsActive: true}).First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("payment method %s is not available", key)
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// UserExists reports whether a user with the given id and one of roles exists.
func (s *OrderStore) UserExists(ctx context.Context, id uint, roles ...string) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
