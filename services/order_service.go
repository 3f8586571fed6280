package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/pricing"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type CreateOrderInput struct {
	UserID         *uint                 `json:"user_id"`
	Type           string                `json:"type" binding:"required,oneof=dine_in delivery pickup"`
	PaymentType    string                `json:"payment_type" binding:"required,oneof=cash card paypal stripe"`
	PaymentStatus  bool                  `json:"payment_status"`
	Items          []pricing.LineRequest `json:"items" binding:"required,min=1,dive"`
	ManualDiscount decimal.Decimal       `json:"manual_discount"`
	DeliveryDate   *time.Time            `json:"delivery_date"`
	CustomerNote   string                `json:"customer_note"`
}

// UpdateOrderInput is the full update payload. Absent fields keep their stored value.
type UpdateOrderInput struct {
	Type           *string          `json:"type" binding:"omitempty,oneof=dine_in delivery pickup"`
	Status         *string          `json:"status" binding:"omitempty,oneof=pending processing ready on_delivery completed canceled failed"`
	PaymentStatus  *bool            `json:"payment_status"`
	ManualDiscount *decimal.Decimal `json:"manual_discount"`
	DeliveryManID  *uint            `json:"delivery_man_id"`
	DeliveryDate   *time.Time       `json:"delivery_date"`
	CustomerNote   *string          `json:"customer_note"`
}

// CustomUpdateInput only touches status, delivery man and payment flag. Totals are never recomputed.
type CustomUpdateInput struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending processing ready on_delivery completed canceled failed"`
	DeliveryManID *uint   `json:"delivery_man_id"`
	PaymentStatus *bool   `json:"payment_status"`
}

// CreateResult carries either the stored order or, for gateway payments, the checkout redirect.
type CreateResult struct {
	Order       *models.Order `json:"order"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

type OrderServiceConfig struct {
	Store      *OrderStore
	Catalog    pricing.Catalog
	Settings   SettingsSource
	Gateways   GatewayFactory
	Poller     *PaymentPoller
	Dispatcher *Dispatcher
	ReturnURL  string
	CancelURL  string
}

// OrderService owns the order lifecycle: pricing, persistence, gateway handoff and notifications.
type OrderService struct {
	store      *OrderStore
	pricer     *pricing.Pricer
	settings   SettingsSource
	gateways   GatewayFactory
	poller     *PaymentPoller
	dispatcher *Dispatcher
	returnURL  string
	cancelURL  string
	now        func() time.Time
}

func NewOrderService(cfg OrderServiceConfig) *OrderService {
	poller := cfg.Poller
	if poller == nil {
		poller = NewPaymentPoller(5, 3*time.Second)
	}
	return &OrderService{
		store:      cfg.Store,
		pricer:     pricing.NewPricer(cfg.Catalog),
		settings:   cfg.Settings,
		gateways:   cfg.Gateways,
		poller:     poller,
		dispatcher: cfg.Dispatcher,
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
		now:        time.Now,
	}
}

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*CreateResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load business settings: %w", err)
	}
	if in.Type != models.OrderTypeDineIn && in.UserID == nil && !cfg.GuestCheckoutAllowed {
		return nil, utils.Validation("guest checkout is not allowed, please sign in")
	}

	totals, err := s.pricer.Totalize(ctx, in.Items, in.Type, in.ManualDiscount, cfg.DeliveryCharge)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:    s.newOrderNumber(),
		UserID:         in.UserID,
		Type:           in.Type,
		Status:         models.OrderStatusPending,
		PaymentType:    in.PaymentType,
		PaymentStatus:  in.PaymentStatus && !models.IsGatewayPaymentType(in.PaymentType),
		TotalQuantity:  totals.TotalQuantity,
		Total:          totals.Total,
		TotalTax:       totals.TotalTax,
		TotalCharges:   totals.TotalCharges,
		Discount:       totals.Discount,
		ManualDiscount: totals.ManualDiscount,
		DeliveryCharge: totals.DeliveryCharge,
		GrandTotal:     totals.GrandTotal,
		DeliveryDate:   in.DeliveryDate,
		CustomerNote:   in.CustomerNote,
		Items:          totals.OrderItems(),
		Charges:        totals.OrderCharges(),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"payment_type": order.PaymentType,
		"grand_total":  order.GrandTotal.StringFixed(2),
	})
	log.Info("Order created")

	if order.RequiresGateway() {
		redirect, err := s.handOff(ctx, order, cfg)
		if err != nil {
			s.compensate(ctx, order)
			return nil, err
		}
		log.WithField("reference", order.PaymentReference).Info("Order handed off to payment gateway")
		return &CreateResult{Order: order, RedirectURL: redirect}, nil
	}

	s.announceNewOrder(order, cfg.Currency)
	s.dispatcher.Broadcast()

	stored, err := s.store.FindWithRelations(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &CreateResult{Order: stored}, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	return s.store.FindWithRelations(ctx, id)
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	return s.store.List(ctx, filter)
}

// KitchenOrders lists the orders a kitchen display still has to work on.
func (s *OrderService) KitchenOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.List(ctx, OrderFilter{Statuses: []string{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusReady,
	}})
}

// Update applies a full update. Line items are never repriced; only the aggregate
// fields affected by type and manual discount changes are adjusted.
func (s *OrderService) Update(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	order, err := s.store.FindWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	prevStatus := order.Status
	prevDeliveryMan := copyID(order.DeliveryManID)

	newType := order.Type
	if in.Type != nil {
		newType = *in.Type
	}
	if !isValidOrderType(newType) {
		return nil, utils.Validation("invalid order type %q", newType)
	}
	newStatus := order.Status
	if in.Status != nil {
		newStatus = *in.Status
	}
	paid := order.PaymentStatus
	if in.PaymentStatus != nil {
		paid = *in.PaymentStatus
	}
	if err := checkTransition(order.Status, newStatus, newType, paid); err != nil {
		return nil, err
	}

	switch {
	case order.Type == models.OrderTypeDelivery && newType != models.OrderTypeDelivery:
		order.DeliveryManID = nil
		order.DeliveryMan = nil
		order.GrandTotal = order.GrandTotal.Sub(order.DeliveryCharge)
		order.DeliveryCharge = decimal.Zero
	case order.Type != models.OrderTypeDelivery && newType == models.OrderTypeDelivery:
		cfg, err := s.settings.Current(ctx)
		if err != nil {
			return nil, fmt.Errorf("load business settings: %w", err)
		}
		order.DeliveryCharge = cfg.DeliveryCharge
		order.GrandTotal = order.GrandTotal.Add(cfg.DeliveryCharge)
	}
	order.Type = newType

	if in.ManualDiscount != nil {
		if in.ManualDiscount.IsNegative() {
			return nil, utils.Validation("manual discount cannot be negative")
		}
		if !in.ManualDiscount.Equal(order.ManualDiscount) {
			order.GrandTotal = order.GrandTotal.Add(order.ManualDiscount).Sub(*in.ManualDiscount)
			order.ManualDiscount = *in.ManualDiscount
		}
	}

	if in.DeliveryManID != nil {
		if err := s.assignDeliveryMan(ctx, order, *in.DeliveryManID); err != nil {
			return nil, err
		}
	}
	if in.DeliveryDate != nil {
		order.DeliveryDate = in.DeliveryDate
	}
	if in.CustomerNote != nil {
		order.CustomerNote = *in.CustomerNote
	}
	order.Status = newStatus
	order.PaymentStatus = paid

	if order.GrandTotal.IsNegative() {
		return nil, utils.Validation("grand total cannot be negative")
	}
	if err := s.store.Save(ctx, order); err != nil {
		return nil, err
	}

	s.afterUpdate(order, prevStatus, prevDeliveryMan)
	return s.store.FindWithRelations(ctx, order.ID)
}

func (s *OrderService) CustomUpdate(ctx context.Context, id uint, in CustomUpdateInput) (*models.Order, error) {
	order, err := s.store.FindWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	prevStatus := order.Status
	prevDeliveryMan := copyID(order.DeliveryManID)

	newStatus := order.Status
	if in.Status != nil {
		newStatus = *in.Status
	}
	paid := order.PaymentStatus
	if in.PaymentStatus != nil {
		paid = *in.PaymentStatus
	}
	if err := checkTransition(order.Status, newStatus, order.Type, paid); err != nil {
		return nil, err
	}
	if in.DeliveryManID != nil {
		if err := s.assignDeliveryMan(ctx, order, *in.DeliveryManID); err != nil {
			return nil, err
		}
	}
	order.Status = newStatus
	order.PaymentStatus = paid

	if err := s.store.Save(ctx, order); err != nil {
		return nil, err
	}

	s.afterUpdate(order, prevStatus, prevDeliveryMan)
	return s.store.FindWithRelations(ctx, order.ID)
}

// Delete removes an order unconditionally.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	utils.InfoLogger.WithField("order_id", id).Info("Order deleted")
	s.dispatcher.Broadcast()
	return nil
}

// CapturePayment confirms a gateway payment by polling the provider. Paid orders return as is.
func (s *OrderService) CapturePayment(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.FindWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.RequiresGateway() {
		return nil, utils.Validation("order is not paid through an online gateway")
	}
	if order.PaymentStatus {
		return order, nil
	}
	if order.IsTerminal() {
		return nil, utils.Validation("order is already %s", order.Status)
	}
	if order.PaymentReference == "" {
		return nil, utils.Validation("order has no payment session")
	}

	gateway, err := s.gatewayFor(ctx, order.PaymentType)
	if err != nil {
		return nil, err
	}
	result, err := s.poller.Poll(ctx, gateway, order.PaymentReference)
	if err != nil {
		return nil, err
	}

	prevStatus := order.Status
	order.PaymentInfo = encodeRaw(result.Raw)
	log := utils.InfoLogger.WithFields(logrus.Fields{"order_id": order.ID, "reference": order.PaymentReference})
	if result.State == PaymentSucceeded {
		order.PaymentStatus = true
		log.Info("Payment captured")
	} else {
		order.Status = models.OrderStatusFailed
		log.Warn("Payment did not complete, order marked failed")
	}
	if err := s.store.Save(ctx, order); err != nil {
		return nil, err
	}

	if order.PaymentStatus {
		cfg, err := s.settings.Current(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("load business settings: %v", err)
		}
		s.announceNewOrder(order, cfg.Currency)
		s.dispatcher.Broadcast()
	} else {
		s.afterUpdate(order, prevStatus, copyID(order.DeliveryManID))
	}
	return s.store.FindWithRelations(ctx, order.ID)
}

// CancelPayment abandons the gateway session and cancels the order.
func (s *OrderService) CancelPayment(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.FindWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.RequiresGateway() {
		return nil, utils.Validation("order is not paid through an online gateway")
	}
	if order.PaymentStatus {
		return nil, utils.Validation("order is already paid")
	}
	if order.IsTerminal() {
		return order, nil
	}

	if order.PaymentReference != "" {
		gateway, err := s.gatewayFor(ctx, order.PaymentType)
		if err != nil {
			return nil, err
		}
		if err := gateway.Cancel(ctx, order.PaymentReference); err != nil {
			return nil, utils.External(err, "could not cancel payment session")
		}
	}

	prevStatus := order.Status
	order.Status = models.OrderStatusCanceled
	if err := s.store.Save(ctx, order); err != nil {
		return nil, err
	}
	s.afterUpdate(order, prevStatus, copyID(order.DeliveryManID))
	return s.store.FindWithRelations(ctx, order.ID)
}

func (s *OrderService) handOff(ctx context.Context, order *models.Order, cfg BusinessConfig) (string, error) {
	gateway, err := s.gatewayFor(ctx, order.PaymentType)
	if err != nil {
		return "", err
	}

	session, err := gateway.CreateSession(ctx, SessionRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.GrandTotal,
		Currency:    cfg.Currency,
		ReturnURL:   expandURL(s.returnURL, order.ID),
		CancelURL:   expandURL(s.cancelURL, order.ID),
	})
	if err != nil {
		return "", utils.External(err, "could not create payment session")
	}

	order.PaymentReference = session.Reference
	order.PaymentInfo = encodeRaw(session.Raw)
	if err := s.store.Save(ctx, order); err != nil {
		if cerr := gateway.Cancel(ctx, session.Reference); cerr != nil {
			utils.ErrorLogger.WithField("reference", session.Reference).Errorf("cancel orphaned session: %v", cerr)
		}
		return "", err
	}
	return session.RedirectURL, nil
}

func (s *OrderService) gatewayFor(ctx context.Context, paymentType string) (Gateway, error) {
	method, err := s.store.ActivePaymentMethod(ctx, paymentType)
	if err != nil {
		return nil, err
	}
	if s.gateways == nil {
		return nil, utils.External(fmt.Errorf("no gateway factory"), "payment gateway is not configured")
	}
	gateway, err := s.gateways(*method)
	if err != nil {
		return nil, utils.External(err, "payment gateway is not configured")
	}
	return gateway, nil
}

// compensate deletes an order whose gateway handoff failed.
func (s *OrderService) compensate(ctx context.Context, order *models.Order) {
	if err := s.store.Delete(context.WithoutCancel(ctx), order.ID); err != nil {
		utils.ErrorLogger.WithField("order_id", order.ID).Errorf("compensating delete failed: %v", err)
		return
	}
	utils.InfoLogger.WithField("order_id", order.ID).Info("Order removed after failed payment handoff")
}

func (s *OrderService) assignDeliveryMan(ctx context.Context, order *models.Order, deliveryManID uint) error {
	if order.Type != models.OrderTypeDelivery {
		return utils.Validation("delivery man can only be assigned to delivery orders")
	}
	ok, err := s.store.UserExists(ctx, deliveryManID, models.RoleDelivery)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("delivery man not found")
	}
	order.DeliveryManID = &deliveryManID
	order.DeliveryMan = nil
	return nil
}

func (s *OrderService) afterUpdate(order *models.Order, prevStatus string, prevDeliveryMan *uint) {
	orderID := order.ID
	if order.Status != prevStatus && order.UserID != nil {
		s.dispatcher.Notify(Notice{
			Kind:       models.NotificationOrderStatus,
			OrderID:    &orderID,
			Recipients: []uint{*order.UserID},
			Title:      "Order status updated",
			Message:    fmt.Sprintf("Order %s is now %s", order.OrderNumber, strings.ReplaceAll(order.Status, "_", " ")),
		})
	}
	if order.DeliveryManID != nil && (prevDeliveryMan == nil || *prevDeliveryMan != *order.DeliveryManID) {
		s.dispatcher.Notify(Notice{
			Kind:       models.NotificationDeliveryAssigned,
			OrderID:    &orderID,
			Recipients: []uint{*order.DeliveryManID},
			Title:      "New delivery assigned",
			Message:    fmt.Sprintf("Order %s has been assigned to you", order.OrderNumber),
		})
	}
	s.dispatcher.Broadcast()
}

func (s *OrderService) announceNewOrder(order *models.Order, currency string) {
	orderID := order.ID
	s.dispatcher.Notify(Notice{
		Kind:    models.NotificationNewOrder,
		OrderID: &orderID,
		Title:   "New order",
		Message: fmt.Sprintf("New %s order %s, total %s",
			strings.ReplaceAll(order.Type, "_", " "), order.OrderNumber, utils.FormatCurrency(currency, order.GrandTotal)),
	})
}

func (s *OrderService) newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), id[:8])
}

func (in CreateOrderInput) validate() error {
	if !isValidOrderType(in.Type) {
		return utils.Validation("invalid order type %q", in.Type)
	}
	switch in.PaymentType {
	case models.PaymentTypeCash, models.PaymentTypeCard, models.PaymentTypePayPal, models.PaymentTypeStripe:
	default:
		return utils.Validation("invalid payment type %q", in.PaymentType)
	}
	if len(in.Items) == 0 {
		return utils.Validation("order must contain at least one item")
	}
	if in.ManualDiscount.IsNegative() {
		return utils.Validation("manual discount cannot be negative")
	}
	return nil
}

// checkTransition guards status changes. Terminal states are final, on_delivery belongs to
// delivery orders only and an order can only be completed once it is paid.
func checkTransition(current, next, orderType string, paid bool) error {
	if !models.IsValidOrderStatus(next) {
		return utils.Validation("invalid order status %q", next)
	}
	if next == models.OrderStatusOnDelivery && orderType != models.OrderTypeDelivery {
		return utils.Validation("status on_delivery is only valid for delivery orders")
	}
	if next == models.OrderStatusCompleted && !paid {
		return utils.Validation("order cannot be completed before it is paid")
	}
	if current == next {
		return nil
	}
	if models.IsTerminalStatus(current) {
		return utils.Validation("order is already %s", current)
	}
	return nil
}

func isValidOrderType(t string) bool {
	return t == models.OrderTypeDineIn || t == models.OrderTypeDelivery || t == models.OrderTypePickup
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func encodeRaw(raw map[string]interface{}) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
