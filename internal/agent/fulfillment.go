package agent

import (
	"context"
	"strings"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// FulfillmentResult is the structured outcome of a fulfillment handler run.
type FulfillmentResult struct {
	Type              string                   `json:"type"`
	OrderID           string                   `json:"order_id"`
	FulfillmentType   domain.FulfillmentType   `json:"fulfillment_type"`
	Location          string                   `json:"location"`
	Status            domain.FulfillmentStatus `json:"status"`
	EstimatedDelivery time.Time                `json:"estimated_delivery"`
}

// FulfillmentAgent routes the user's latest order to pickup, reservation or
// home delivery based on the message.
type FulfillmentAgent struct {
	store store.Store
	now   func() time.Time
}

// NewFulfillmentAgent creates a fulfillment handler.
func NewFulfillmentAgent(st store.Store) *FulfillmentAgent {
	return &FulfillmentAgent{store: st, now: time.Now}
}

// Handle picks the fulfillment mode from the message, stamps the matching
// status and readiness estimate on the latest order and persists it.
func (a *FulfillmentAgent) Handle(ctx context.Context, userID string, message string) (any, error) {
	order, err := a.store.GetLatestOrderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return noOrder("fulfillment", "No order found to arrange fulfillment for."), nil
	}

	ftype := detectFulfillmentType(message)
	location := a.resolveLocation(ctx, userID, message, ftype)

	var (
		status   domain.FulfillmentStatus
		estimate time.Time
	)
	switch ftype {
	case domain.FulfillmentPickup:
		// Ready for in-store collection within the same business day.
		status = domain.FulfillmentStatusConfirmed
		estimate = a.now().Add(4 * time.Hour)
	case domain.FulfillmentReserve:
		// Held at the store for 48 hours.
		status = domain.FulfillmentStatusReserved
		estimate = a.now().Add(48 * time.Hour)
	default:
		status = domain.FulfillmentStatusProcessing
		estimate = a.now().Add(72 * time.Hour)
	}

	fulfillment := domain.Fulfillment{
		Type:              ftype,
		Location:          location,
		Status:            status,
		EstimatedDelivery: &estimate,
	}
	if err := a.store.UpdateOrderFulfillment(ctx, order.OrderID, fulfillment); err != nil {
		return nil, err
	}

	return FulfillmentResult{
		Type:              "fulfillment",
		OrderID:           order.OrderID,
		FulfillmentType:   ftype,
		Location:          location,
		Status:            status,
		EstimatedDelivery: estimate,
	}, nil
}

func detectFulfillmentType(message string) domain.FulfillmentType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "pickup") || strings.Contains(lower, "pick up"):
		return domain.FulfillmentPickup
	case strings.Contains(lower, "reserve"):
		return domain.FulfillmentReserve
	}
	return domain.FulfillmentShip
}

// resolveLocation returns the destination for this fulfillment. Shipping
// always goes to the home address; store modes prefer a store named in the
// message, then the user's preferred store, then the flagship.
func (a *FulfillmentAgent) resolveLocation(ctx context.Context, userID, message string, ftype domain.FulfillmentType) string {
	if ftype == domain.FulfillmentShip {
		return "Home Address"
	}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "store-001") {
		return "Store-001"
	}

	if user, err := a.store.GetUser(ctx, userID); err == nil && user != nil && user.PreferredStoreLocation != "" {
		return user.PreferredStoreLocation
	}
	return "Store-007"
}
