package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/tests/helpers"
)

// scriptedGateway replays a fixed sequence of attempt outcomes.
func scriptedGateway(outcomes ...bool) Gateway {
	i := 0
	return GatewayFunc(func(ctx context.Context, req ChargeRequest) bool {
		if i >= len(outcomes) {
			return false
		}
		ok := outcomes[i]
		i++
		return ok
	})
}

func TestPaymentSucceedsAfterRetries(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.CreateTestOrder(t, s, "o1", "u1", 1799)

	a := NewPaymentAgent(s, scriptedGateway(false, false, true), nil, 3, time.Millisecond)

	got, err := a.Handle(ctx, "u1", domain.ChannelWeb, "pay with card")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result, ok := got.(PaymentResult)
	if !ok {
		t.Fatalf("unexpected result type %T", got)
	}
	if result.Status != "success" {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Reason)
	}
	if result.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", result.Attempts)
	}
	if result.Method != domain.PaymentMethodCard {
		t.Fatalf("expected card, got %s", result.Method)
	}
	if !strings.HasPrefix(result.TransactionID, "TXN-") {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
	if result.AmountCharged != 1799 {
		t.Fatalf("expected 1799 charged, got %v", result.AmountCharged)
	}

	order, err := s.GetOrder(ctx, "o1")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.Payment.Status != domain.PaymentStatusSuccess || order.Payment.TransactionID != result.TransactionID {
		t.Fatalf("order payment not persisted: %+v", order.Payment)
	}
}

func TestPaymentFailsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.CreateTestOrder(t, s, "o1", "u1", 1599)

	a := NewPaymentAgent(s, scriptedGateway(false, false, false), nil, 3, time.Millisecond)

	got, err := a.Handle(ctx, "u1", domain.ChannelWeb, "pay via upi")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(PaymentResult)
	if result.Status != "failed" {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if result.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", result.Attempts)
	}
	if result.Reason != "Max retries exceeded or payment declined" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}

	order, _ := s.GetOrder(ctx, "o1")
	if order.Payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected failed persisted, got %s", order.Payment.Status)
	}
	// Method survives on the failed record.
	if order.Payment.Method != domain.PaymentMethodUPI {
		t.Fatalf("expected UPI preserved, got %s", order.Payment.Method)
	}
	if order.Payment.TransactionID != "" {
		t.Fatalf("failed payment must not carry a transaction id, got %q", order.Payment.TransactionID)
	}
}

func TestPaymentNoPendingOrder(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)

	a := NewPaymentAgent(s, scriptedGateway(true), nil, 3, time.Millisecond)

	got, err := a.Handle(ctx, "u1", domain.ChannelWeb, "checkout")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result, ok := got.(NoOrderResult)
	if !ok || result.Status != "no_order" {
		t.Fatalf("expected no_order result, got %+v", got)
	}
}

func TestPaymentSkipsSettledOrders(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)

	order := helpers.CreateTestOrder(t, s, "o1", "u1", 500)
	if err := s.UpdateOrderPayment(ctx, order.OrderID, domain.Payment{
		Method: domain.PaymentMethodUPI, Status: domain.PaymentStatusSuccess, TransactionID: "TXN-X",
	}); err != nil {
		t.Fatalf("UpdateOrderPayment failed: %v", err)
	}

	a := NewPaymentAgent(s, scriptedGateway(true), nil, 3, time.Millisecond)
	got, err := a.Handle(ctx, "u1", domain.ChannelWeb, "pay")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if _, ok := got.(NoOrderResult); !ok {
		t.Fatalf("settled order must not be retargeted, got %+v", got)
	}
}

func TestDetectMethod(t *testing.T) {
	cases := []struct {
		message string
		want    domain.PaymentMethod
	}{
		{"pay with UPI", domain.PaymentMethodUPI},
		{"use my credit card", domain.PaymentMethodCard},
		{"redeem my gift voucher", domain.PaymentMethodGiftCard},
		{"just checkout", domain.PaymentMethodUPI},
	}
	for _, tc := range cases {
		if got := detectMethod(tc.message); got != tc.want {
			t.Errorf("detectMethod(%q) = %s, want %s", tc.message, got, tc.want)
		}
	}
}

func TestPaymentCancelledContext(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	helpers.CreateTestOrder(t, s, "o1", "u1", 100)

	a := NewPaymentAgent(s, scriptedGateway(false, false, true), nil, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Handle(ctx, "u1", domain.ChannelWeb, "pay"); err == nil {
		t.Fatal("expected context error during backoff")
	}
}
