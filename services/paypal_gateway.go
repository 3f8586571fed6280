package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/plutov/paypal/v4"
)

const (
	paypalSandboxURL = paypal.APIBaseSandBox
	paypalLiveURL    = paypal.APIBaseLive

	paypalIntentCapture   = "CAPTURE"
	paypalStatusApproved  = "APPROVED"
	paypalStatusCompleted = "COMPLETED"
	paypalStatusVoided    = "VOIDED"
)

type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
	Live     bool
}

// PayPalGateway talks to the PayPal Orders v2 API.
type PayPalGateway struct {
	client  *paypal.Client
	baseURL string

	mu       sync.Mutex
	hasToken bool
}

func NewPayPalGateway(cfg PayPalConfig) (*PayPalGateway, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, errors.New("paypal: client id and secret are required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = paypalSandboxURL
		if cfg.Live {
			baseURL = paypalLiveURL
		}
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.Secret, baseURL)
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}
	client.Client = &http.Client{Timeout: 30 * time.Second}

	return &PayPalGateway{client: client, baseURL: baseURL}, nil
}

func (g *PayPalGateway) CreateSession(ctx context.Context, req SessionRequest) (*GatewaySession, error) {
	if err := g.authenticate(ctx); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: req.OrderNumber,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: currency,
			Value:    req.Amount.StringFixed(2),
		},
	}}
	appContext := &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}

	order, err := g.client.CreateOrderWithPaypalRequestID(ctx, paypalIntentCapture, units, nil, appContext, "order-"+req.OrderNumber)
	if err != nil {
		return nil, paypalError("create order", err)
	}

	redirect := ""
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			redirect = link.Href
			break
		}
	}
	if order.ID == "" || redirect == "" {
		return nil, errors.New("paypal: order response has no approval link")
	}

	return &GatewaySession{Reference: order.ID, RedirectURL: redirect, Raw: paypalRaw(order)}, nil
}

// PollStatus reads the PayPal order. An approved order is captured on the spot.
func (g *PayPalGateway) PollStatus(ctx context.Context, reference string) (*PaymentResult, error) {
	if err := g.authenticate(ctx); err != nil {
		return nil, err
	}

	order, err := g.client.GetOrder(ctx, reference)
	if err != nil {
		return nil, paypalError("get order", err)
	}
	if order.Status != paypalStatusApproved {
		return &PaymentResult{State: mapPayPalStatus(order.Status), Raw: paypalRaw(order)}, nil
	}

	captured, err := g.client.CaptureOrder(ctx, reference, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, paypalError("capture order", err)
	}
	return &PaymentResult{State: mapPayPalStatus(captured.Status), Raw: paypalRaw(captured)}, nil
}

// Cancel has no PayPal counterpart for an unapproved order; the order simply expires.
// The order is read once so an unknown reference still surfaces as an error.
func (g *PayPalGateway) Cancel(ctx context.Context, reference string) error {
	if err := g.authenticate(ctx); err != nil {
		return err
	}
	if _, err := g.client.GetOrder(ctx, reference); err != nil {
		return paypalError("get order", err)
	}
	return nil
}

// mapPayPalStatus maps PayPal order status to internal status
func mapPayPalStatus(status string) PaymentState {
	switch status {
	case paypalStatusCompleted:
		return PaymentSucceeded
	case paypalStatusVoided:
		return PaymentFailed
	default:
		return PaymentPending
	}
}

// authenticate fetches the first access token. The client renews it before expiry on its own.
func (g *PayPalGateway) authenticate(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hasToken {
		return nil
	}
	if _, err := g.client.GetAccessToken(ctx); err != nil {
		return paypalError("access token", err)
	}
	g.hasToken = true
	return nil
}

func paypalError(op string, err error) error {
	var apiErr *paypal.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return fmt.Errorf("paypal: %s failed (status %d): %s %s", op, apiErr.Response.StatusCode, apiErr.Name, apiErr.Message)
	}
	return fmt.Errorf("paypal: %s: %w", op, err)
}

// paypalRaw flattens a typed PayPal response into the generic map stored on the order.
func paypalRaw(v interface{}) map[string]interface{} {
	raw := map[string]interface{}{}
	data, err := json.Marshal(v)
	if err != nil {
		return raw
	}
	_ = json.Unmarshal(data, &raw)
	return raw
}
