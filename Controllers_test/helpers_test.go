package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/satouyama/pesto-sub001/database"
	"github.com/satouyama/pesto-sub001/kds"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/router"
	"github.com/satouyama/pesto-sub001/services"
	"github.com/satouyama/pesto-sub001/utils"
)

type stubGateway struct {
	mu       sync.Mutex
	states   []services.PaymentState
	canceled []string
}

func (g *stubGateway) CreateSession(_ context.Context, req services.SessionRequest) (*services.GatewaySession, error) {
	ref := fmt.Sprintf("cs_%d", req.OrderID)
	return &services.GatewaySession{Reference: ref, RedirectURL: "https://pay.example/" + ref, Raw: map[string]interface{}{"id": ref}}, nil
}

func (g *stubGateway) PollStatus(_ context.Context, reference string) (*services.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	state := services.PaymentPending
	if len(g.states) > 0 {
		state = g.states[0]
		g.states = g.states[1:]
	}
	return &services.PaymentResult{State: state, Raw: map[string]interface{}{"id": reference}}, nil
}

func (g *stubGateway) Cancel(_ context.Context, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, reference)
	return nil
}

type testApp struct {
	db         *gorm.DB
	router     *gin.Engine
	gateway    *stubGateway
	dispatcher *services.Dispatcher

	pizza    models.MenuItem
	burger   models.MenuItem
	large    models.VariantOption
	size     models.Variant
	admin    models.User
	customer models.User
	rider    models.User
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestApp builds the full router on an in-memory database seeded with a small menu:
// Pizza 10.00 (10% off, 5% VAT, Large +2.00) and Burger 8.00 (0.50 service charge).
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()

	app := &testApp{db: setupTestDB(t), gateway: &stubGateway{}}
	db := app.db

	vat := models.Charge{Name: "VAT", Type: models.ChargeTypeTax, AmountType: models.AmountTypePercentage, Amount: dec("5"), IsAvailable: true}
	service := models.Charge{Name: "Service", Type: models.ChargeTypeCharge, AmountType: models.AmountTypeAmount, Amount: dec("0.50"), IsAvailable: true}
	require.NoError(t, db.Create(&vat).Error)
	require.NoError(t, db.Create(&service).Error)

	app.size = models.Variant{Name: "Size", Requirement: models.VariantRequired, IsAvailable: true}
	require.NoError(t, db.Create(&app.size).Error)
	app.large = models.VariantOption{VariantID: app.size.ID, Name: "Large", Price: dec("2.00"), Position: 1}
	require.NoError(t, db.Create(&app.large).Error)

	app.pizza = models.MenuItem{
		Name: "Pizza", Price: dec("10.00"), Discount: dec("10"), DiscountType: models.DiscountTypePercentage, IsAvailable: true,
		Charges:  []models.Charge{vat},
		Variants: []models.Variant{app.size},
	}
	require.NoError(t, db.Create(&app.pizza).Error)
	app.burger = models.MenuItem{Name: "Burger", Price: dec("8.00"), IsAvailable: true, Charges: []models.Charge{service}}
	require.NoError(t, db.Create(&app.burger).Error)

	app.admin = models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	app.customer = models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleCustomer}
	app.rider = models.User{Name: "Rui", Email: "rui@example.com", Role: models.RoleDelivery}
	require.NoError(t, db.Create(&app.admin).Error)
	require.NoError(t, db.Create(&app.customer).Error)
	require.NoError(t, db.Create(&app.rider).Error)

	require.NoError(t, database.SeedSettings(db, database.SeedDefaults{Currency: "USD", DeliveryCharge: dec("5.00")}))
	require.NoError(t, db.Create(&models.PaymentMethod{Key: models.PaymentTypeStripe, Name: "Stripe", SecretKey: "sk_test", IsActive: true}).Error)

	hub := kds.NewHub()
	app.dispatcher = services.NewDispatcher(services.NewDBNotifier(db), hub, kds.TopicOrders)
	orders := services.NewOrderService(services.OrderServiceConfig{
		Store:    services.NewOrderStore(db),
		Catalog:  services.NewGormCatalog(db),
		Settings: services.NewGormSettings(db, services.BusinessConfig{Currency: "USD"}),
		Gateways: func(models.PaymentMethod) (services.Gateway, error) {
			return app.gateway, nil
		},
		Poller:     services.NewPaymentPoller(3, time.Millisecond),
		Dispatcher: app.dispatcher,
		ReturnURL:  "http://localhost/orders/{order_id}/payment/capture",
		CancelURL:  "http://localhost/orders/{order_id}/payment/cancel",
	})

	app.router = router.SetupRouter(router.Dependencies{
		DB:       db,
		Orders:   orders,
		Reports:  services.NewReportService(db),
		Hub:      hub,
		Currency: "USD",
	})
	return app
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (app *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// orderView is the subset of the order JSON the tests look at.
type orderView struct {
	ID             uint            `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         *uint           `json:"user_id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	PaymentStatus  bool            `json:"payment_status"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	DeliveryManID  *uint           `json:"delivery_man_id"`
	Items          []struct {
		GrandPrice decimal.Decimal `json:"grand_price"`
	} `json:"items"`
	Charges []struct {
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"charges"`
}

type createView struct {
	Order       orderView `json:"order"`
	RedirectURL string    `json:"redirect_url"`
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func pizzaLine(qty int, app *testApp) map[string]interface{} {
	return map[string]interface{}{
		"menu_item_id": app.pizza.ID,
		"quantity":     qty,
		"variants": []map[string]interface{}{
			{"variant_id": app.size.ID, "option_ids": []uint{app.large.ID}},
		},
	}
}

func (app *testApp) createCashOrder(t *testing.T, token string, body map[string]interface{}) orderView {
	t.Helper()
	w, resp := app.do(t, http.MethodPost, "/orders", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created createView
	decode(t, resp.Data, &created)
	return created.Order
}
