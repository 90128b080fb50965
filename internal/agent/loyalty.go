package agent

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// LoyaltyResult is the structured outcome of a loyalty handler run.
type LoyaltyResult struct {
	Type           string  `json:"type"`
	OrderID        string  `json:"order_id"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DiscountReason string  `json:"discount_reason"`
	FinalTotal     float64 `json:"final_total"`
	Savings        float64 `json:"savings"`
}

// LoyaltyAgent applies tier and promotional discounts to the user's latest
// order. The computation is a pure function of tier, active promotions and
// subtotal; only the persisted totals mutate.
type LoyaltyAgent struct {
	store store.Store
	now   func() time.Time
}

// NewLoyaltyAgent creates a loyalty handler.
func NewLoyaltyAgent(st store.Store) *LoyaltyAgent {
	return &LoyaltyAgent{store: st, now: time.Now}
}

// Handle recomputes the discount on the latest order from the user's tier
// plus any live tier-scoped promotion, then persists the new totals.
func (a *LoyaltyAgent) Handle(ctx context.Context, userID string, message string) (any, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return NoOrderResult{
			Type:    "loyalty",
			Status:  "no_user",
			Message: "A user profile is required to apply loyalty benefits.",
		}, nil
	}

	order, err := a.store.GetLatestOrderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return noOrder("loyalty", "No order found to apply a discount to."), nil
	}

	percent := 0.0
	var reasons []string
	if tierPct := domain.TierDiscountPercent(user.LoyaltyTier); tierPct > 0 {
		percent += tierPct
		reasons = append(reasons, fmt.Sprintf("%s tier %.0f%%", user.LoyaltyTier, tierPct))
	}

	promo, err := a.store.GetActivePromotion(ctx, user.LoyaltyTier, a.now())
	if err != nil {
		return nil, err
	}
	if promo != nil {
		percent += promo.DiscountPercent
		reasons = append(reasons, fmt.Sprintf("%s %.0f%%", promo.Name, promo.DiscountPercent))
	}

	discount := math.Round(order.Subtotal * percent / 100)
	finalTotal := order.Subtotal - discount
	if finalTotal < 0 {
		finalTotal = 0
	}

	if err := a.store.UpdateOrderDiscount(ctx, order.OrderID, discount, finalTotal); err != nil {
		return nil, err
	}

	reason := "No discount applicable"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}
	return LoyaltyResult{
		Type:           "loyalty",
		OrderID:        order.OrderID,
		Subtotal:       order.Subtotal,
		Discount:       discount,
		DiscountReason: reason,
		FinalTotal:     finalTotal,
		Savings:        discount,
	}, nil
}
