// Package service implements the orchestration core: it receives chat
// messages, classifies intent, dispatches capability handlers and composes
// the reply.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omnichat/orchestrator/internal/agent"
	"github.com/omnichat/orchestrator/internal/conversation"
	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/hub"
	"github.com/omnichat/orchestrator/internal/nlg"
	"github.com/omnichat/orchestrator/internal/session"
	"github.com/omnichat/orchestrator/internal/store"
)

// Agents bundles the capability handlers the service dispatches to.
type Agents struct {
	Recommendation *agent.RecommendationAgent
	Inventory      *agent.InventoryAgent
	Payment        *agent.PaymentAgent
	Fulfillment    *agent.FulfillmentAgent
	Loyalty        *agent.LoyaltyAgent
	PostPurchase   *agent.PostPurchaseAgent
}

// Service is the orchestration core. All dependencies are injected; the
// service holds no global state beyond the per-session locks.
type Service struct {
	store         store.Store
	sessions      *session.Manager
	conversations *conversation.Manager
	agents        Agents
	generator     nlg.Generator
	publisher     hub.Publisher
	locks         *sessionLocks
	now           func() time.Time
}

// New creates the service.
func New(st store.Store, sessions *session.Manager, conversations *conversation.Manager, agents Agents, generator nlg.Generator, publisher hub.Publisher) *Service {
	return &Service{
		store:         st,
		sessions:      sessions,
		conversations: conversations,
		agents:        agents,
		generator:     generator,
		publisher:     publisher,
		locks:         newSessionLocks(),
		now:           time.Now,
	}
}

// GetConversation returns the full conversation for a session.
func (s *Service) GetConversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := s.conversations.GetContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, conversation.ErrConversationNotFound
	}
	return conv, nil
}

// RecentMessages returns the last limit messages for a session.
func (s *Service) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	return s.conversations.RecentMessages(ctx, sessionID, limit)
}

// SwitchChannel moves a session to another channel, preserving its
// conversation.
func (s *Service) SwitchChannel(ctx context.Context, sessionID string, channel domain.Channel) (*domain.Conversation, error) {
	if !domain.ValidChannel(channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.conversations.SwitchChannel(ctx, sessionID, channel)
}

// DestroySession removes a session and its conversation.
func (s *Service) DestroySession(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.sessions.Destroy(ctx, sessionID)
}

// ListProducts lists catalog entries.
func (s *Service) ListProducts(ctx context.Context, filter store.ProductFilter) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

// GetOrder fetches one order.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// OrderLine is one requested item on a new order.
type OrderLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CreateOrder prices the requested lines from the catalog and persists a new
// order with payment pending.
func (s *Service) CreateOrder(ctx context.Context, userID string, lines []OrderLine) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	skus := make([]string, len(lines))
	for i, line := range lines {
		skus[i] = line.SKU
	}
	products, err := s.store.GetProductsBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}
	bySKU := make(map[string]domain.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}

	var (
		items    []domain.OrderItem
		subtotal float64
	)
	for _, line := range lines {
		product, ok := bySKU[line.SKU]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSKU, line.SKU)
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := product.FinalPrice * float64(qty)
		items = append(items, domain.OrderItem{
			SKU:      product.SKU,
			Name:     product.Name,
			Price:    product.FinalPrice,
			Quantity: qty,
			Subtotal: lineTotal,
		})
		subtotal += lineTotal
	}

	order := &domain.Order{
		OrderID:    "ord_" + uuid.New().String()[:8],
		UserID:     userID,
		Items:      items,
		Subtotal:   subtotal,
		FinalTotal: subtotal,
		Payment:    domain.Payment{Status: domain.PaymentStatusPending},
		Fulfillment: domain.Fulfillment{
			Status: domain.FulfillmentStatusPending,
		},
		CreatedAt: s.now(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SweepExpiredSessions removes sessions past their expiry.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.SweepExpired(ctx)
}
