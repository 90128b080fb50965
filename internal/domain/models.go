package domain

import (
	"encoding/json"
	"time"
)

// Session is the channel-independent identity of a conversation. It carries
// no domain data itself; the conversation row owns the log and context.
type Session struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id,omitempty"` // empty = anonymous
	Channel      Channel   `json:"channel"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Message is a single entry in a conversation's append-only log.
type Message struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is a line in the in-progress cart held in conversation context.
type CartItem struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Context is the mutable shared state layered on a conversation. Known keys
// are typed; Extra is an open area for capability-specific state.
type Context struct {
	CurrentFocus     Intent                     `json:"current_focus,omitempty"`
	SelectedProducts []string                   `json:"selected_products,omitempty"`
	Cart             []CartItem                 `json:"cart,omitempty"`
	Extra            map[string]json.RawMessage `json:"extra,omitempty"`
}

// ContextUpdate is a shallow merge into Context. Nil fields are left
// untouched; Extra keys overwrite individually.
type ContextUpdate struct {
	CurrentFocus     *Intent
	SelectedProducts []string
	Cart             []CartItem
	Extra            map[string]json.RawMessage
}

// Apply merges u into c, last write wins per key.
func (c *Context) Apply(u ContextUpdate) {
	if u.CurrentFocus != nil {
		c.CurrentFocus = *u.CurrentFocus
	}
	if u.SelectedProducts != nil {
		c.SelectedProducts = u.SelectedProducts
	}
	if u.Cart != nil {
		c.Cart = u.Cart
	}
	if len(u.Extra) > 0 {
		if c.Extra == nil {
			c.Extra = make(map[string]json.RawMessage, len(u.Extra))
		}
		for k, v := range u.Extra {
			c.Extra[k] = v
		}
	}
}

// Conversation is the durable record owned 1:1 by a session.
type Conversation struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id,omitempty"`
	Channel      Channel   `json:"channel"`
	Context      Context   `json:"context"`
	Messages     []Message `json:"messages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// OrderItem is a priced line on an order.
type OrderItem struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// Payment is an order's payment sub-record.
type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
}

// Fulfillment is an order's fulfillment sub-record.
type Fulfillment struct {
	Type              FulfillmentType   `json:"type"`
	Location          string            `json:"location,omitempty"`
	Status            FulfillmentStatus `json:"status"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
}

// Order is the unit of commerce state capability handlers mutate.
type Order struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	Discount    float64     `json:"discount"`
	FinalTotal  float64     `json:"final_total"`
	Payment     Payment     `json:"payment"`
	Fulfillment Fulfillment `json:"fulfillment"`
	CreatedAt   time.Time   `json:"created_at"`
}

// User is a registered shopper.
type User struct {
	UserID                 string      `json:"user_id"`
	Name                   string      `json:"name"`
	Email                  string      `json:"email"`
	LoyaltyTier            LoyaltyTier `json:"loyalty_tier"`
	LoyaltyPoints          int         `json:"loyalty_points"`
	PreferredStoreLocation string      `json:"preferred_store_location,omitempty"`
	CreatedAt              time.Time   `json:"created_at"`
}

// Product is a catalog entry.
type Product struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	FinalPrice  float64  `json:"final_price"`
	Tags        []string `json:"tags,omitempty"`
	InStock     bool     `json:"in_stock"`
}

// InventoryRecord is location-scoped stock for one SKU.
type InventoryRecord struct {
	SKU            string    `json:"sku"`
	Location       string    `json:"location"`
	AvailableStock int       `json:"available_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Promotion is a date-windowed percentage discount limited to loyalty tiers.
type Promotion struct {
	PromotionID     string        `json:"promotion_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	DiscountPercent float64       `json:"discount_percent"`
	ApplicableTiers []LoyaltyTier `json:"applicable_tiers"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	Active          bool          `json:"active"`
}

// AppliesTo reports whether the promotion is live at now for the given tier.
func (p *Promotion) AppliesTo(tier LoyaltyTier, now time.Time) bool {
	if !p.Active || now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	for _, t := range p.ApplicableTiers {
		if t == tier {
			return true
		}
	}
	return false
}
