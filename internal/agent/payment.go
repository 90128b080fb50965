package agent

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
	"github.com/omnichat/orchestrator/policy"
)

// DefaultGatewaySuccessRate models the flakiness of the simulated payment
// gateway.
const DefaultGatewaySuccessRate = 0.85

// ChargeRequest describes one payment attempt against the gateway.
type ChargeRequest struct {
	OrderID string
	Amount  float64
	Method  domain.PaymentMethod
}

// Gateway is a pluggable payment backend. Each Charge call is one
// independent attempt; the retry loop lives in the handler, not the gateway.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) bool
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req ChargeRequest) bool

func (f GatewayFunc) Charge(ctx context.Context, req ChargeRequest) bool {
	return f(ctx, req)
}

// RandomGateway succeeds each attempt with a fixed probability.
type RandomGateway struct {
	rate float64
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewRandomGateway creates a gateway succeeding with the given probability.
// An out-of-range rate falls back to DefaultGatewaySuccessRate.
func NewRandomGateway(rate float64) *RandomGateway {
	if rate <= 0 || rate > 1 {
		rate = DefaultGatewaySuccessRate
	}
	return &RandomGateway{
		rate: rate,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *RandomGateway) Charge(ctx context.Context, req ChargeRequest) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.rate
}

// PaymentResult is the structured outcome of a payment handler run.
// A failed payment is a successful handler execution: the failure travels in
// Status, and the order reflects it.
type PaymentResult struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"order_id,omitempty"`
	Method        domain.PaymentMethod `json:"method,omitempty"`
	Status        string               `json:"status"`
	TransactionID string               `json:"transaction_id,omitempty"`
	AmountCharged float64              `json:"amount_charged,omitempty"`
	Attempts      int                  `json:"attempts,omitempty"`
	Reason        string               `json:"reason,omitempty"`
}

// PaymentAgent settles the user's most recent order that still has a
// pending payment. Other handlers operate on the latest order regardless of
// payment state; this narrower target is deliberate.
type PaymentAgent struct {
	store       store.Store
	gateway     Gateway
	policy      *policy.Engine
	maxAttempts int
	backoffStep time.Duration
}

// NewPaymentAgent creates a payment handler. backoffStep scales the wait
// between failed attempts: attempt n sleeps n×backoffStep.
func NewPaymentAgent(st store.Store, gateway Gateway, engine *policy.Engine, maxAttempts int, backoffStep time.Duration) *PaymentAgent {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &PaymentAgent{
		store:       st,
		gateway:     gateway,
		policy:      engine,
		maxAttempts: maxAttempts,
		backoffStep: backoffStep,
	}
}

// Handle extracts a payment method from the message and runs the bounded
// retry loop against the pending order.
func (a *PaymentAgent) Handle(ctx context.Context, userID string, channel domain.Channel, message string) (any, error) {
	method := detectMethod(message)

	order, err := a.store.GetLatestPendingPaymentOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return noOrder("payment", "No pending order found to pay for."), nil
	}

	if a.policy != nil {
		decision, err := a.policy.Evaluate(ctx, policy.Input{
			OrderID: order.OrderID,
			UserID:  userID,
			Method:  string(method),
			Amount:  order.FinalTotal,
			Channel: string(channel),
		})
		if err != nil {
			log.Printf("WARN: checkout policy evaluation failed, allowing payment: %v", err)
		} else if decision == "block" {
			return PaymentResult{
				Type:    "payment",
				OrderID: order.OrderID,
				Method:  method,
				Status:  "declined",
				Reason:  "Payment blocked by checkout policy",
			}, nil
		}
	}

	return a.processPayment(ctx, order, method)
}

// processPayment runs up to maxAttempts independent gateway trials with a
// strictly increasing backoff between failed attempts. Only the current
// message's task suspends during backoff.
func (a *PaymentAgent) processPayment(ctx context.Context, order *domain.Order, method domain.PaymentMethod) (any, error) {
	req := ChargeRequest{OrderID: order.OrderID, Amount: order.FinalTotal, Method: method}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if a.gateway.Charge(ctx, req) {
			txnID := "TXN-" + strings.ToUpper(uuid.New().String()[:12])
			payment := domain.Payment{
				Method:        method,
				Status:        domain.PaymentStatusSuccess,
				TransactionID: txnID,
			}
			if err := a.store.UpdateOrderPayment(ctx, order.OrderID, payment); err != nil {
				return nil, err
			}
			return PaymentResult{
				Type:          "payment",
				OrderID:       order.OrderID,
				Method:        method,
				Status:        "success",
				TransactionID: txnID,
				AmountCharged: order.FinalTotal,
				Attempts:      attempt,
			}, nil
		}

		if attempt < a.maxAttempts {
			if err := sleepCtx(ctx, time.Duration(attempt)*a.backoffStep); err != nil {
				return nil, err
			}
		}
	}

	// Retries exhausted: the method is preserved on the failed record.
	payment := domain.Payment{
		Method: method,
		Status: domain.PaymentStatusFailed,
	}
	if err := a.store.UpdateOrderPayment(ctx, order.OrderID, payment); err != nil {
		return nil, err
	}
	return PaymentResult{
		Type:     "payment",
		OrderID:  order.OrderID,
		Method:   method,
		Status:   "failed",
		Attempts: a.maxAttempts,
		Reason:   "Max retries exceeded or payment declined",
	}, nil
}

func detectMethod(message string) domain.PaymentMethod {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "upi"):
		return domain.PaymentMethodUPI
	case strings.Contains(lower, "card"):
		return domain.PaymentMethodCard
	case strings.Contains(lower, "gift"):
		return domain.PaymentMethodGiftCard
	}
	return domain.PaymentMethodUPI
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
