package agent

import (
	"context"
	"strings"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// PostPurchaseResult is the structured outcome of a post-purchase handler
// run. The populated fields depend on Action.
type PostPurchaseResult struct {
	Type              string                   `json:"type"`
	Action            string                   `json:"action"`
	OrderID           string                   `json:"order_id"`
	Status            domain.FulfillmentStatus `json:"status,omitempty"`
	EstimatedDelivery *time.Time               `json:"estimated_delivery,omitempty"`
	RefundAmount      float64                  `json:"refund_amount,omitempty"`
	RefundMethod      string                   `json:"refund_method,omitempty"`
	Message           string                   `json:"message"`
}

// PostPurchaseAgent handles tracking, returns, exchanges and feedback for
// the user's latest order. It reads order state but never mutates it;
// returns and exchanges only open a workflow.
type PostPurchaseAgent struct {
	store store.Store
}

// NewPostPurchaseAgent creates a post-purchase handler.
func NewPostPurchaseAgent(st store.Store) *PostPurchaseAgent {
	return &PostPurchaseAgent{store: st}
}

// Handle resolves the requested action and answers from the latest order.
func (a *PostPurchaseAgent) Handle(ctx context.Context, userID string, message string) (any, error) {
	order, err := a.store.GetLatestOrderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return noOrder("post_purchase", "No order found to assist with."), nil
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "track"):
		return PostPurchaseResult{
			Type:              "post_purchase",
			Action:            "tracking",
			OrderID:           order.OrderID,
			Status:            order.Fulfillment.Status,
			EstimatedDelivery: order.Fulfillment.EstimatedDelivery,
			Message:           "Your order is " + string(order.Fulfillment.Status) + ".",
		}, nil
	case strings.Contains(lower, "return"):
		return PostPurchaseResult{
			Type:         "post_purchase",
			Action:       "return_initiated",
			OrderID:      order.OrderID,
			RefundAmount: order.FinalTotal,
			RefundMethod: "original payment method",
			Message:      "Return initiated. A pickup will be scheduled within 2 business days.",
		}, nil
	case strings.Contains(lower, "exchange"):
		return PostPurchaseResult{
			Type:    "post_purchase",
			Action:  "exchange_initiated",
			OrderID: order.OrderID,
			Message: "Exchange initiated. The replacement ships once the original item is collected.",
		}, nil
	}

	return PostPurchaseResult{
		Type:    "post_purchase",
		Action:  "feedback",
		OrderID: order.OrderID,
		Message: "Thanks for sharing your experience. 50 loyalty points have been noted for your account.",
	}, nil
}
