package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Expire(id string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error)
}

type StripeConfig struct {
	APIKey    string
	AccountID string
	Backends  *stripe.Backends

	sessions stripeSessionAPI
}

// StripeGateway opens Stripe Checkout sessions for orders.
type StripeGateway struct {
	sessions stripeSessionAPI
	account  string
}

func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	sessions := cfg.sessions
	if sessions == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sc := client.New(apiKey, cfg.Backends)
		sessions = sc.CheckoutSessions
	}
	return &StripeGateway{
		sessions: sessions,
		account:  strings.TrimSpace(cfg.AccountID),
	}, nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*GatewaySession, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.ReturnURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderNumber),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + req.OrderNumber),
					},
				},
			},
		},
		Metadata: map[string]string{
			"order_id":     strconv.FormatUint(uint64(req.OrderID), 10),
			"order_number": req.OrderNumber,
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + req.OrderNumber)
	if g.account != "" {
		params.SetStripeAccount(g.account)
	}

	session, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	return &GatewaySession{
		Reference:   session.ID,
		RedirectURL: session.URL,
		Raw:         stripeRaw(session),
	}, nil
}

func (g *StripeGateway) PollStatus(ctx context.Context, reference string) (*PaymentResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	if g.account != "" {
		params.SetStripeAccount(g.account)
	}

	session, err := g.sessions.Get(reference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return &PaymentResult{
		State: mapStripeSession(session),
		Raw:   stripeRaw(session),
	}, nil
}

func (g *StripeGateway) Cancel(ctx context.Context, reference string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if g.account != "" {
		params.SetStripeAccount(g.account)
	}
	if _, err := g.sessions.Expire(reference, params); err != nil {
		return fmt.Errorf("stripe: expire checkout session: %w", err)
	}
	return nil
}

func mapStripeSession(session *stripe.CheckoutSession) PaymentState {
	switch session.Status {
	case stripe.CheckoutSessionStatusComplete:
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
			session.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
			return PaymentSucceeded
		}
		return PaymentPending
	case stripe.CheckoutSessionStatusExpired:
		return PaymentFailed
	default:
		return PaymentPending
	}
}

func stripeRaw(session *stripe.CheckoutSession) map[string]interface{} {
	raw := map[string]interface{}{}
	if data, err := json.Marshal(session); err == nil {
		_ = json.Unmarshal(data, &raw)
	}
	return raw
}
