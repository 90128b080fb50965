// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
)

// Store defines the interface for data persistence. Lookups return
// (nil, nil) when the entity does not exist; absence is not an error.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Conversation operations
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, sessionID string) (*domain.Conversation, error)
	UpdateConversationContext(ctx context.Context, sessionID string, contextData domain.Context, lastActivity time.Time) error
	UpdateConversationChannel(ctx context.Context, sessionID string, channel domain.Channel, lastActivity time.Time) error
	UpdateConversationUser(ctx context.Context, sessionID, userID string) error
	DeleteConversation(ctx context.Context, sessionID string) error

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Order operations
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	GetLatestOrderByUser(ctx context.Context, userID string) (*domain.Order, error)
	GetLatestPendingPaymentOrder(ctx context.Context, userID string) (*domain.Order, error)
	UpdateOrderPayment(ctx context.Context, orderID string, payment domain.Payment) error
	UpdateOrderFulfillment(ctx context.Context, orderID string, fulfillment domain.Fulfillment) error
	UpdateOrderDiscount(ctx context.Context, orderID string, discount, finalTotal float64) error

	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// Product operations
	CreateProduct(ctx context.Context, product *domain.Product) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProductsBySKUs(ctx context.Context, skus []string) ([]domain.Product, error)

	// Inventory operations
	UpsertInventory(ctx context.Context, record *domain.InventoryRecord) error
	GetInventory(ctx context.Context, sku, location string) (*domain.InventoryRecord, error)

	// Promotion operations
	CreatePromotion(ctx context.Context, promo *domain.Promotion) error
	GetActivePromotion(ctx context.Context, tier domain.LoyaltyTier, now time.Time) (*domain.Promotion, error)

	// Lifecycle
	Close() error
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	MaxPrice float64
	Limit    int
}
