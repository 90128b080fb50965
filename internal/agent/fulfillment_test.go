package agent

import (
	"context"
	"testing"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/tests/helpers"
)

func TestFulfillmentModes(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		message      string
		wantType     domain.FulfillmentType
		wantStatus   domain.FulfillmentStatus
		wantLocation string
		wantEstimate time.Time
	}{
		{
			name:         "pickup",
			message:      "I'll pickup from the store",
			wantType:     domain.FulfillmentPickup,
			wantStatus:   domain.FulfillmentStatusConfirmed,
			wantLocation: "Store-007",
			wantEstimate: fixed.Add(4 * time.Hour),
		},
		{
			name:         "reserve",
			message:      "reserve it for me",
			wantType:     domain.FulfillmentReserve,
			wantStatus:   domain.FulfillmentStatusReserved,
			wantLocation: "Store-007",
			wantEstimate: fixed.Add(48 * time.Hour),
		},
		{
			name:         "ship",
			message:      "home delivery please",
			wantType:     domain.FulfillmentShip,
			wantStatus:   domain.FulfillmentStatusProcessing,
			wantLocation: "Home Address",
			wantEstimate: fixed.Add(72 * time.Hour),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := helpers.NewTestSQLiteStore(t)
			helpers.CreateTestOrder(t, s, "o1", "u1", 1799)

			a := NewFulfillmentAgent(s)
			a.now = func() time.Time { return fixed }

			got, err := a.Handle(ctx, "u1", tc.message)
			if err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			result := got.(FulfillmentResult)
			if result.FulfillmentType != tc.wantType {
				t.Fatalf("expected type %s, got %s", tc.wantType, result.FulfillmentType)
			}
			if result.Status != tc.wantStatus {
				t.Fatalf("expected status %s, got %s", tc.wantStatus, result.Status)
			}
			if result.Location != tc.wantLocation {
				t.Fatalf("expected location %s, got %s", tc.wantLocation, result.Location)
			}
			if !result.EstimatedDelivery.Equal(tc.wantEstimate) {
				t.Fatalf("expected estimate %v, got %v", tc.wantEstimate, result.EstimatedDelivery)
			}

			order, _ := s.GetOrder(ctx, "o1")
			if order.Fulfillment.Status != tc.wantStatus || order.Fulfillment.Type != tc.wantType {
				t.Fatalf("fulfillment not persisted: %+v", order.Fulfillment)
			}
			if order.Fulfillment.EstimatedDelivery == nil || !order.Fulfillment.EstimatedDelivery.Equal(tc.wantEstimate) {
				t.Fatalf("estimate not persisted: %+v", order.Fulfillment.EstimatedDelivery)
			}
		})
	}
}

func TestFulfillmentStoreFromMessage(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.CreateTestOrder(t, s, "o1", "u1", 500)

	a := NewFulfillmentAgent(s)
	got, err := a.Handle(ctx, "u1", "pickup at Store-001")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result := got.(FulfillmentResult); result.Location != "Store-001" {
		t.Fatalf("expected Store-001, got %s", result.Location)
	}
}

func TestFulfillmentNoOrder(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)

	a := NewFulfillmentAgent(s)
	got, err := a.Handle(ctx, "u1", "pickup")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result, ok := got.(NoOrderResult); !ok || result.Status != "no_order" {
		t.Fatalf("expected no_order, got %+v", got)
	}
}
