package services

import (
	"context"
	"time"

	"github.com/satouyama/pesto-sub001/utils"
	"github.com/sirupsen/logrus"
)

// PaymentPoller checks a gateway reference a bounded number of times.
type PaymentPoller struct {
	Attempts int
	Delay    time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewPaymentPoller(attempts int, delay time.Duration) *PaymentPoller {
	if attempts < 1 {
		attempts = 1
	}
	return &PaymentPoller{Attempts: attempts, Delay: delay, sleep: sleepContext}
}

// Poll returns the first terminal state reported by the gateway. Once the attempts run out,
// pending answers and gateway errors alike, the result is PaymentFailed.
func (p *PaymentPoller) Poll(ctx context.Context, gateway Gateway, reference string) (*PaymentResult, error) {
	var (
		last    *PaymentResult
		lastErr error
	)

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		result, err := gateway.PollStatus(ctx, reference)
		entry := utils.InfoLogger.WithFields(logrus.Fields{"reference": reference, "attempt": attempt})
		switch {
		case err != nil:
			lastErr = err
			entry.Warnf("payment status check failed: %v", err)
		case result.State.Terminal():
			entry.WithField("state", result.State).Info("payment reached terminal state")
			return result, nil
		default:
			last = result
			entry.Info("payment still pending")
		}

		if attempt == p.Attempts {
			break
		}
		if err := p.sleep(ctx, p.Delay); err != nil {
			return nil, err
		}
	}

	raw := map[string]interface{}{}
	if last != nil && last.Raw != nil {
		raw = last.Raw
	}
	if lastErr != nil {
		raw["last_error"] = lastErr.Error()
	}
	return &PaymentResult{State: PaymentFailed, Raw: raw}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
