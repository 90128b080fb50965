// Package helpers provides shared test fixtures.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// NewTestSQLiteStore opens an in-memory store that is closed with the test.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// SeedDemo loads the demo catalog into the store.
func SeedDemo(t *testing.T, s store.Store) {
	t.Helper()
	if err := store.SeedDemoData(context.Background(), s); err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}
}

// CreateTestOrder inserts a pending order for userID with the given subtotal.
func CreateTestOrder(t *testing.T, s store.Store, orderID, userID string, subtotal float64) *domain.Order {
	t.Helper()

	order := &domain.Order{
		OrderID:  orderID,
		UserID:   userID,
		Subtotal: subtotal,
		Items: []domain.OrderItem{
			{SKU: "FS123", Name: "Azure Formal Shirt", Price: subtotal, Quantity: 1, Subtotal: subtotal},
		},
		FinalTotal:  subtotal,
		Payment:     domain.Payment{Status: domain.PaymentStatusPending},
		Fulfillment: domain.Fulfillment{Status: domain.FulfillmentStatusPending},
		CreatedAt:   time.Now(),
	}
	if err := s.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}
