// Package domain defines the core domain models for the orchestrator.
package domain

// Channel identifies the surface a conversation is happening on.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelApp      Channel = "app"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
	ChannelKiosk    Channel = "kiosk"
)

// ValidChannel reports whether c is one of the supported channels.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelWeb, ChannelApp, ChannelWhatsApp, ChannelTelegram, ChannelKiosk:
		return true
	}
	return false
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentRecommendation Intent = "recommendation"
	IntentInventory      Intent = "inventory"
	IntentPayment        Intent = "payment"
	IntentFulfillment    Intent = "fulfillment"
	IntentLoyalty        Intent = "loyalty"
	IntentPostPurchase   Intent = "post_purchase"
)

// PaymentMethod is the tender used to settle an order.
type PaymentMethod string

const (
	PaymentMethodUPI      PaymentMethod = "UPI"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodGiftCard PaymentMethod = "gift_card"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// PaymentStatus tracks the state of an order's payment sub-record.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// FulfillmentType is how an order reaches the customer.
type FulfillmentType string

const (
	FulfillmentShip    FulfillmentType = "ship"
	FulfillmentPickup  FulfillmentType = "pickup"
	FulfillmentReserve FulfillmentType = "reserve"
)

// FulfillmentStatus tracks the state of an order's fulfillment sub-record.
type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusConfirmed  FulfillmentStatus = "confirmed"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusShipped    FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered  FulfillmentStatus = "delivered"
	FulfillmentStatusReserved   FulfillmentStatus = "reserved"
)

// LoyaltyTier is a customer's loyalty program level.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "Bronze"
	TierSilver   LoyaltyTier = "Silver"
	TierGold     LoyaltyTier = "Gold"
	TierPlatinum LoyaltyTier = "Platinum"
)

// TierDiscountPercent returns the flat percentage discount a tier grants.
func TierDiscountPercent(tier LoyaltyTier) float64 {
	switch tier {
	case TierSilver:
		return 5
	case TierGold:
		return 10
	case TierPlatinum:
		return 15
	}
	return 0
}
