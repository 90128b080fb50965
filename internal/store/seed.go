package store

import (
	"context"
	"strings"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
)

// SeedDemoData loads the demo catalog, a Gold-tier user, Store-007 stock and
// an active Gold promotion so the conversational flow works end to end on a
// fresh database. Existing rows are left alone.
func SeedDemoData(ctx context.Context, s Store) error {
	now := time.Now()

	user := &domain.User{
		UserID:                 "user-priya-demo",
		Name:                   "Priya Demo",
		Email:                  "priya.demo@example.com",
		LoyaltyTier:            domain.TierGold,
		LoyaltyPoints:          120,
		PreferredStoreLocation: "Store-007",
		CreatedAt:              now,
	}
	if err := s.CreateUser(ctx, user); err != nil && !isUniqueViolation(err) {
		return err
	}

	products := []domain.Product{
		{
			SKU:         "FS123",
			Name:        "Azure Formal Shirt",
			Description: "Slim fit, cotton-rich formal shirt ideal for office wear.",
			Category:    "formal-shirt",
			Price:       1799,
			FinalPrice:  1799,
			Tags:        []string{"formal", "office", "azure"},
			InStock:     true,
		},
		{
			SKU:         "FS456",
			Name:        "Classic White Shirt",
			Description: "Classic white cotton shirt, versatile for office and events.",
			Category:    "formal-shirt",
			Price:       1599,
			FinalPrice:  1599,
			Tags:        []string{"formal", "office", "white"},
			InStock:     true,
		},
		{
			SKU:         "CS789",
			Name:        "Casual Check Shirt",
			Description: "Comfortable casual check shirt for weekends.",
			Category:    "casual-shirt",
			Price:       1299,
			FinalPrice:  1299,
			Tags:        []string{"casual", "weekend"},
			InStock:     true,
		},
	}
	for i := range products {
		if err := s.CreateProduct(ctx, &products[i]); err != nil && !isUniqueViolation(err) {
			return err
		}
	}

	stock := []domain.InventoryRecord{
		{SKU: "FS123", Location: "Store-007", AvailableStock: 15, ReservedStock: 2, UpdatedAt: now},
		{SKU: "FS456", Location: "Store-007", AvailableStock: 8, ReservedStock: 1, UpdatedAt: now},
		{SKU: "CS789", Location: "Store-007", AvailableStock: 10, ReservedStock: 0, UpdatedAt: now},
	}
	for i := range stock {
		if err := s.UpsertInventory(ctx, &stock[i]); err != nil {
			return err
		}
	}

	promo := &domain.Promotion{
		PromotionID:     "promo-festive-gold",
		Name:            "Festive Gold Bonus",
		Description:     "Extra 5% off for Gold members during the festive window.",
		DiscountPercent: 5,
		ApplicableTiers: []domain.LoyaltyTier{domain.TierGold, domain.TierPlatinum},
		StartDate:       now.Add(-24 * time.Hour),
		EndDate:         now.Add(30 * 24 * time.Hour),
		Active:          true,
	}
	if err := s.CreatePromotion(ctx, promo); err != nil && !isUniqueViolation(err) {
		return err
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
