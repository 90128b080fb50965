package agent

import (
	"context"
	"testing"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
	"github.com/omnichat/orchestrator/tests/helpers"
)

func createTestUser(t *testing.T, s store.Store, userID string, tier domain.LoyaltyTier) {
	t.Helper()
	err := s.CreateUser(context.Background(), &domain.User{
		UserID:      userID,
		Name:        "Test User",
		Email:       userID + "@example.com",
		LoyaltyTier: tier,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func TestLoyaltyTierDiscount(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	createTestUser(t, s, "u-gold", domain.TierGold)
	helpers.CreateTestOrder(t, s, "o1", "u-gold", 1000)

	a := NewLoyaltyAgent(s)
	got, err := a.Handle(ctx, "u-gold", "any discount for me?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(LoyaltyResult)
	if result.Discount != 100 || result.FinalTotal != 900 {
		t.Fatalf("expected 100/900 for Gold on 1000, got %v/%v", result.Discount, result.FinalTotal)
	}
	if result.Savings != 100 {
		t.Fatalf("expected savings 100, got %v", result.Savings)
	}

	order, _ := s.GetOrder(ctx, "o1")
	if order.Discount != 100 || order.FinalTotal != 900 {
		t.Fatalf("totals not persisted: %v/%v", order.Discount, order.FinalTotal)
	}
}

func TestLoyaltyTierPlusPromotion(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	createTestUser(t, s, "u-gold", domain.TierGold)
	helpers.CreateTestOrder(t, s, "o1", "u-gold", 1000)

	now := time.Now()
	err := s.CreatePromotion(ctx, &domain.Promotion{
		PromotionID:     "p1",
		Name:            "Festive Bonus",
		DiscountPercent: 5,
		ApplicableTiers: []domain.LoyaltyTier{domain.TierGold},
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(time.Hour),
		Active:          true,
	})
	if err != nil {
		t.Fatalf("CreatePromotion failed: %v", err)
	}

	a := NewLoyaltyAgent(s)
	got, err := a.Handle(ctx, "u-gold", "apply my loyalty benefits")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(LoyaltyResult)
	// 10% tier + 5% promo on 1000.
	if result.Discount != 150 || result.FinalTotal != 850 {
		t.Fatalf("expected 150/850, got %v/%v", result.Discount, result.FinalTotal)
	}
	if result.DiscountReason != "Gold tier 10%, Festive Bonus 5%" {
		t.Fatalf("unexpected reason %q", result.DiscountReason)
	}
}

func TestLoyaltyBronzeNoDiscount(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	createTestUser(t, s, "u-bronze", domain.TierBronze)
	helpers.CreateTestOrder(t, s, "o1", "u-bronze", 1000)

	a := NewLoyaltyAgent(s)
	got, err := a.Handle(ctx, "u-bronze", "discount?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(LoyaltyResult)
	if result.Discount != 0 || result.FinalTotal != 1000 {
		t.Fatalf("expected no discount, got %v/%v", result.Discount, result.FinalTotal)
	}
	if result.DiscountReason != "No discount applicable" {
		t.Fatalf("unexpected reason %q", result.DiscountReason)
	}
}

func TestLoyaltyMissingUserAndOrder(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)

	a := NewLoyaltyAgent(s)
	got, err := a.Handle(ctx, "ghost", "offers?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result := got.(NoOrderResult); result.Status != "no_user" {
		t.Fatalf("expected no_user, got %+v", result)
	}

	createTestUser(t, s, "u1", domain.TierSilver)
	got, err = a.Handle(ctx, "u1", "offers?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result := got.(NoOrderResult); result.Status != "no_order" {
		t.Fatalf("expected no_order, got %+v", result)
	}
}
