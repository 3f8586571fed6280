package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/satouyama/pesto-sub001/database"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testCatalog struct {
	Pizza       models.MenuItem
	Burger      models.MenuItem
	Unavailable models.MenuItem
	Size        models.Variant
	Large       models.VariantOption
	Sauce       models.Addon
	Customer    models.User
	Rider       models.User
}

// seedCatalog stores: Pizza 10.00, 10% discount, 5% VAT, Size variant (Large +2.00), Sauce addon 1.50;
// Burger 8.00 with a flat 0.50 service charge; one unavailable item; a customer and a delivery user.
func seedCatalog(t *testing.T, db *gorm.DB) testCatalog {
	t.Helper()
	var tc testCatalog

	vat := models.Charge{Name: "VAT", Type: models.ChargeTypeTax, AmountType: models.AmountTypePercentage, Amount: dec("5"), IsAvailable: true}
	service := models.Charge{Name: "Service", Type: models.ChargeTypeCharge, AmountType: models.AmountTypeAmount, Amount: dec("0.50"), IsAvailable: true}
	require.NoError(t, db.Create(&vat).Error)
	require.NoError(t, db.Create(&service).Error)

	tc.Size = models.Variant{Name: "Size", Requirement: models.VariantRequired, IsAvailable: true}
	require.NoError(t, db.Create(&tc.Size).Error)
	tc.Large = models.VariantOption{VariantID: tc.Size.ID, Name: "Large", Price: dec("2.00"), Position: 1}
	require.NoError(t, db.Create(&tc.Large).Error)

	tc.Sauce = models.Addon{Name: "Sauce", Price: dec("1.50"), IsAvailable: true}
	require.NoError(t, db.Create(&tc.Sauce).Error)

	tc.Pizza = models.MenuItem{
		Name: "Pizza", Price: dec("10.00"), Discount: dec("10"), DiscountType: models.DiscountTypePercentage, IsAvailable: true,
		Charges:  []models.Charge{vat},
		Variants: []models.Variant{tc.Size},
		Addons:   []models.Addon{tc.Sauce},
	}
	require.NoError(t, db.Create(&tc.Pizza).Error)

	tc.Burger = models.MenuItem{Name: "Burger", Price: dec("8.00"), IsAvailable: true, Charges: []models.Charge{service}}
	require.NoError(t, db.Create(&tc.Burger).Error)

	tc.Unavailable = models.MenuItem{Name: "Soup", Price: dec("4.00"), IsAvailable: false}
	require.NoError(t, db.Create(&tc.Unavailable).Error)

	tc.Customer = models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleCustomer}
	tc.Rider = models.User{Name: "Rui", Email: "rui@example.com", Role: models.RoleDelivery}
	require.NoError(t, db.Create(&tc.Customer).Error)
	require.NoError(t, db.Create(&tc.Rider).Error)

	require.NoError(t, db.Create(&models.Setting{Currency: "USD", DeliveryCharge: dec("5.00"), GuestCheckoutAllowed: false}).Error)
	return tc
}

type fakeGateway struct {
	mu         sync.Mutex
	session    *GatewaySession
	sessionErr error
	states     []PaymentState
	pollErr    error
	cancelErr  error
	polls      int
	canceled   []string
	requests   []SessionRequest
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (*GatewaySession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return g.session, nil
}

func (g *fakeGateway) PollStatus(_ context.Context, reference string) (*PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.polls++
	if g.pollErr != nil {
		return nil, g.pollErr
	}
	state := PaymentPending
	if len(g.states) > 0 {
		state = g.states[0]
		g.states = g.states[1:]
	}
	return &PaymentResult{State: state, Raw: map[string]interface{}{"id": reference, "state": string(state)}}, nil
}

func (g *fakeGateway) Cancel(_ context.Context, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.canceled = append(g.canceled, reference)
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *fakeNotifier) Notify(_ context.Context, notice Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.notices))
	for _, notice := range n.notices {
		out = append(out, notice.Kind)
	}
	return out
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	topics   []string
	payloads []interface{}
}

func (b *fakeBroadcaster) Publish(_ context.Context, topic string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics)
}

type testEnv struct {
	db          *gorm.DB
	catalog     testCatalog
	service     *OrderService
	gateway     *fakeGateway
	notifier    *fakeNotifier
	broadcaster *fakeBroadcaster
	dispatcher  *Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:          db,
		catalog:     seedCatalog(t, db),
		gateway:     &fakeGateway{session: &GatewaySession{Reference: "cs_test_1", RedirectURL: "https://pay.example/cs_test_1", Raw: map[string]interface{}{"id": "cs_test_1"}}},
		notifier:    &fakeNotifier{},
		broadcaster: &fakeBroadcaster{},
	}
	env.dispatcher = NewDispatcher(env.notifier, env.broadcaster, "orders")
	env.service = NewOrderService(OrderServiceConfig{
		Store:    NewOrderStore(db),
		Catalog:  NewGormCatalog(db),
		Settings: NewGormSettings(db, BusinessConfig{Currency: "USD"}),
		Gateways: func(method models.PaymentMethod) (Gateway, error) {
			if method.SecretKey == "broken" {
				return nil, errors.New("bad credentials")
			}
			return env.gateway, nil
		},
		Poller:     NewPaymentPoller(5, time.Millisecond),
		Dispatcher: env.dispatcher,
		ReturnURL:  "http://localhost/orders/{order_id}/payment/capture",
		CancelURL:  "http://localhost/orders/{order_id}/payment/cancel",
	})
	return env
}

func (e *testEnv) activateGateway(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.PaymentMethod{Key: key, Name: key, SecretKey: "sk_test", IsActive: true}).Error)
}

func (e *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func (e *testEnv) reload(t *testing.T, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, e.db.First(&order, id).Error)
	return order
}

func paypalMethod() models.PaymentMethod {
	return models.PaymentMethod{Key: models.PaymentTypePayPal, PublicKey: "client", SecretKey: "secret", IsActive: true}
}

func stripeMethod() models.PaymentMethod {
	return models.PaymentMethod{Key: models.PaymentTypeStripe, SecretKey: "sk_test_123", IsActive: true}
}

func cashMethod() models.PaymentMethod {
	return models.PaymentMethod{Key: models.PaymentTypeCash, IsActive: true}
}
