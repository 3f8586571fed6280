package services

import (
	"context"
	"time"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChargeSummary is one (name, type) rollup of order charge rows.
type ChargeSummary struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

type DashboardStats struct {
	TotalOrders     int64            `json:"total_orders"`
	TodayOrders     int64            `json:"today_orders"`
	PendingPayments int64            `json:"pending_payments"`
	Revenue         decimal.Decimal  `json:"revenue"`
	TodayRevenue    decimal.Decimal  `json:"today_revenue"`
	StatusCounts    map[string]int64 `json:"status_counts"`
}

type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

var closedStatuses = []string{models.OrderStatusCanceled, models.OrderStatusFailed}

// ChargeReport aggregates order charges of live orders, optionally within [from, to].
func (r *ReportService) ChargeReport(ctx context.Context, from, to *time.Time) ([]ChargeSummary, error) {
	query := r.db.WithContext(ctx).
		Table("order_charges").
		Select("order_charges.name AS name, order_charges.type AS type, COALESCE(SUM(order_charges.amount), 0) AS amount, COUNT(*) AS count").
		Joins("JOIN orders ON orders.id = order_charges.order_id").
		Where("orders.status NOT IN ?", closedStatuses)
	if from != nil {
		query = query.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("orders.created_at <= ?", *to)
	}

	var rows []ChargeSummary
	if err := query.Group("order_charges.name, order_charges.type").
		Order("order_charges.type, order_charges.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Amount = rows[i].Amount.Round(2)
	}
	return rows, nil
}

func (r *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	now := r.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{StatusCounts: map[string]int64{}}

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("payment_status = ? AND status NOT IN ?", false, closedStatuses).
		Count(&stats.PendingPayments).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS total").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.StatusCounts[c.Status] = c.Total
	}

	paid := db.Model(&models.Order{}).Where("payment_status = ? AND status NOT IN ?", true, closedStatuses)
	var revenue, today decimal.Decimal
	if err := paid.Session(&gorm.Session{}).Select("COALESCE(SUM(grand_total), 0)").Row().Scan(&revenue); err != nil {
		return nil, err
	}
	if err := paid.Session(&gorm.Session{}).Where("created_at >= ?", startOfDay).Select("COALESCE(SUM(grand_total), 0)").Row().Scan(&today); err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Round(2)
	stats.TodayRevenue = today.Round(2)
	return stats, nil
}
