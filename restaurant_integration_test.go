package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/satouyama/pesto-sub001/config"
	"github.com/satouyama/pesto-sub001/database"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
)

func TestMain(m *testing.M) {
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedSettings(db, database.SeedDefaults{
		Currency:       "USD",
		DeliveryCharge: decimal.RequireFromString("5.00"),
	}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		BroadcastChannel:    "orders",
		Currency:            "USD",
		PaymentPollAttempts: 1,
		PaymentPollDelay:    time.Millisecond,
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, method, url, token string, body interface{}) (int, envelope) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// TestEndToEndIntegration walks the main flow:
// 1. Kitchen screen connects to /ws/kds
// 2. Guest places a cash order -> KDS receives {"success":true}
// 3. Staff processes, pays and completes the order
// 4. Dashboard and charge report follow
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)

	vat := models.Charge{Name: "VAT", Type: models.ChargeTypeTax, AmountType: models.AmountTypePercentage, Amount: decimal.NewFromInt(10), IsAvailable: true}
	require.NoError(t, db.Create(&vat).Error)
	menu := models.MenuItem{Name: "Nasi Goreng", Price: decimal.RequireFromString("4.50"), IsAvailable: true, Charges: []models.Charge{vat}}
	require.NoError(t, db.Create(&menu).Error)
	staff := models.User{Name: "Sari", Email: "sari@example.com", Role: models.RoleStaff}
	require.NoError(t, db.Create(&staff).Error)
	token, err := utils.GenerateToken(staff.ID, staff.Role)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, err := newApplication(ctx, testConfig(), db)
	require.NoError(t, err)
	defer app.Close()

	server := httptest.NewServer(app.Router)
	defer server.Close()

	// 1. KDS websocket, token in the query string
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/kds?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return app.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// 2. Guest order
	code, env := call(t, http.MethodPost, server.URL+"/orders", "", map[string]interface{}{
		"type":         models.OrderTypeDineIn,
		"payment_type": models.PaymentTypeCash,
		"items":        []map[string]interface{}{{"menu_item_id": menu.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created struct {
		Order struct {
			ID         uint            `json:"id"`
			GrandTotal decimal.Decimal `json:"grand_total"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	// 2 x (4.50 + 0.45 VAT)
	assert.True(t, created.Order.GrandTotal.Equal(decimal.RequireFromString("9.90")), created.Order.GrandTotal.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string          `json:"event"`
		Data  map[string]bool `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "orders", msg.Event)
	assert.True(t, msg.Data["success"])

	// 3. Staff flow
	orderURL := fmt.Sprintf("%s/admin/orders/%d", server.URL, created.Order.ID)
	code, env = call(t, http.MethodPatch, orderURL, token, map[string]interface{}{"status": models.OrderStatusProcessing})
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = call(t, http.MethodPatch, orderURL, token, map[string]interface{}{"status": models.OrderStatusCompleted})
	require.Equal(t, http.StatusUnprocessableEntity, code, env.Message)
	code, env = call(t, http.MethodPatch, orderURL, token, map[string]interface{}{"status": models.OrderStatusCompleted, "payment_status": true})
	require.Equal(t, http.StatusOK, code, env.Message)

	// 4. Reports
	code, env = call(t, http.MethodGet, server.URL+"/admin/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var stats struct {
		Stats struct {
			Revenue decimal.Decimal `json:"revenue"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.True(t, stats.Stats.Revenue.Equal(decimal.RequireFromString("9.90")))

	code, env = call(t, http.MethodGet, server.URL+"/admin/reports/charges", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"VAT"`)
}

func TestKDSWebsocketRequiresToken(t *testing.T) {
	app, err := newApplication(context.Background(), testConfig(), setupTestDB(t))
	require.NoError(t, err)
	defer app.Close()

	server := httptest.NewServer(app.Router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/kds"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	customer, err := utils.GenerateToken(42, models.RoleCustomer)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token="+customer, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
