package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/shopspring/decimal"
)

// PaymentState is the provider independent outcome of a payment.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentSucceeded PaymentState = "succeeded"
	PaymentFailed    PaymentState = "failed"
)

func (s PaymentState) Terminal() bool {
	return s == PaymentSucceeded || s == PaymentFailed
}

// SessionRequest describes the checkout a gateway has to open for an order.
type SessionRequest struct {
	OrderID     uint
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string
	CancelURL   string
}

// GatewaySession is the provider answer to a checkout request.
type GatewaySession struct {
	Reference   string
	RedirectURL string
	Raw         map[string]interface{}
}

type PaymentResult struct {
	State PaymentState
	Raw   map[string]interface{}
}

// Gateway is implemented by every external payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*GatewaySession, error)
	PollStatus(ctx context.Context, reference string) (*PaymentResult, error)
	Cancel(ctx context.Context, reference string) error
}

// GatewayFactory builds a gateway from a stored payment-method configuration.
type GatewayFactory func(method models.PaymentMethod) (Gateway, error)

// GatewayOptions holds process wide settings shared by every provider.
type GatewayOptions struct {
	PayPalBaseURL string
}

// NewGatewayFactory returns the production factory: Stripe Checkout and PayPal Orders.
func NewGatewayFactory(opts GatewayOptions) GatewayFactory {
	return func(method models.PaymentMethod) (Gateway, error) {
		switch method.Key {
		case models.PaymentTypeStripe:
			return NewStripeGateway(StripeConfig{
				APIKey:    method.SecretKey,
				AccountID: method.AccountID,
			})
		case models.PaymentTypePayPal:
			return NewPayPalGateway(PayPalConfig{
				ClientID: method.PublicKey,
				Secret:   method.SecretKey,
				BaseURL:  opts.PayPalBaseURL,
				Live:     method.IsLive(),
			})
		default:
			return nil, fmt.Errorf("no gateway for payment method %q", method.Key)
		}
	}
}

// toMinorUnits converts an amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// expandURL fills the {order_id} placeholder of a configured return/cancel URL.
func expandURL(template string, orderID uint) string {
	return strings.ReplaceAll(template, "{order_id}", strconv.FormatUint(uint64(orderID), 10))
}
