package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
)

type fakeStripeSessions struct {
	created *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
	expired []string
	lastGet string
}

func (f *fakeStripeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.created = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeStripeSessions) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.lastGet = id
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeStripeSessions) Expire(id string, _ *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.expired = append(f.expired, id)
	return f.session, nil
}

func TestStripeGatewayCreateSession(t *testing.T) {
	fake := &fakeStripeSessions{session: &stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/c/cs_123"}}
	gw, err := NewStripeGateway(StripeConfig{sessions: fake})
	require.NoError(t, err)

	session, err := gw.CreateSession(context.Background(), SessionRequest{
		OrderID:     42,
		OrderNumber: "ORD-20260101-ABCDEF12",
		Amount:      decimal.RequireFromString("22.68"),
		Currency:    "EUR",
		ReturnURL:   "https://shop.example/return",
		CancelURL:   "https://shop.example/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_123", session.Reference)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_123", session.RedirectURL)
	assert.Equal(t, "cs_123", session.Raw["id"])

	params := fake.created
	require.NotNil(t, params)
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, int64(2268), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "eur", *params.LineItems[0].PriceData.Currency)
	assert.Equal(t, "42", params.Metadata["order_id"])
	assert.Equal(t, "https://shop.example/return", *params.SuccessURL)
	require.NotNil(t, params.IdempotencyKey)
	assert.Equal(t, "order-ORD-20260101-ABCDEF12", *params.IdempotencyKey)
}

func TestStripeGatewayPollStatus(t *testing.T) {
	tests := []struct {
		name    string
		session *stripe.CheckoutSession
		want    PaymentState
	}{
		{"paid", &stripe.CheckoutSession{ID: "cs_1", Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid}, PaymentSucceeded},
		{"complete but unpaid", &stripe.CheckoutSession{ID: "cs_1", Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}, PaymentPending},
		{"open", &stripe.CheckoutSession{ID: "cs_1", Status: stripe.CheckoutSessionStatusOpen}, PaymentPending},
		{"expired", &stripe.CheckoutSession{ID: "cs_1", Status: stripe.CheckoutSessionStatusExpired}, PaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStripeSessions{session: tt.session}
			gw, err := NewStripeGateway(StripeConfig{sessions: fake})
			require.NoError(t, err)

			result, err := gw.PollStatus(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.State)
			assert.Equal(t, "cs_1", fake.lastGet)
		})
	}
}

func TestStripeGatewayErrors(t *testing.T) {
	_, err := NewStripeGateway(StripeConfig{})
	assert.Error(t, err)

	fake := &fakeStripeSessions{err: errors.New("card_declined")}
	gw, err := NewStripeGateway(StripeConfig{sessions: fake})
	require.NoError(t, err)

	_, err = gw.CreateSession(context.Background(), SessionRequest{OrderNumber: "ORD-1", Amount: decimal.NewFromInt(1)})
	assert.ErrorContains(t, err, "card_declined")
	_, err = gw.PollStatus(context.Background(), "cs_1")
	assert.Error(t, err)
	assert.Error(t, gw.Cancel(context.Background(), "cs_1"))
}

func TestStripeGatewayCancelExpiresSession(t *testing.T) {
	fake := &fakeStripeSessions{session: &stripe.CheckoutSession{ID: "cs_9"}}
	gw, err := NewStripeGateway(StripeConfig{sessions: fake})
	require.NoError(t, err)

	require.NoError(t, gw.Cancel(context.Background(), "cs_9"))
	assert.Equal(t, []string{"cs_9"}, fake.expired)
}
