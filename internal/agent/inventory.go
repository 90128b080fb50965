package agent

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omnichat/orchestrator/internal/store"
)

// skuPattern matches catalog SKUs embedded in free text, e.g. FS123.
var skuPattern = regexp.MustCompile(`[A-Z]{2}\d{3}`)

// defaultInventorySKUs are checked when the message names no SKU.
var defaultInventorySKUs = []string{"FS123", "FS456"}

// InventoryStatus is one SKU's availability at a location.
type InventoryStatus struct {
	SKU            string `json:"sku"`
	Status         string `json:"status"`
	AvailableStock int    `json:"available_stock"`
	ReservedStock  int    `json:"reserved_stock,omitempty"`
}

// InventoryResult is the structured outcome of an inventory handler run.
type InventoryResult struct {
	Type      string            `json:"type"`
	Location  string            `json:"location"`
	Items     []InventoryStatus `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
}

// InventoryAgent answers availability questions with per-SKU lookups run in
// parallel against the inventory table.
type InventoryAgent struct {
	store store.Store
	now   func() time.Time
}

// NewInventoryAgent creates an inventory handler.
func NewInventoryAgent(st store.Store) *InventoryAgent {
	return &InventoryAgent{store: st, now: time.Now}
}

// Handle extracts SKUs from the message and checks stock for each at the
// resolved store. Lookups are independent, so they fan out concurrently and
// results keep the extraction order.
func (a *InventoryAgent) Handle(ctx context.Context, userID string, message string) (any, error) {
	skus := extractSKUs(message)
	location := a.resolveStore(ctx, userID, message)

	items := make([]InventoryStatus, len(skus))
	g, gctx := errgroup.WithContext(ctx)
	for i, sku := range skus {
		g.Go(func() error {
			rec, err := a.store.GetInventory(gctx, sku, location)
			if err != nil {
				return err
			}
			st := InventoryStatus{SKU: sku, Status: "out_of_stock"}
			if rec != nil && rec.AvailableStock > 0 {
				st.Status = "in_stock"
				st.AvailableStock = rec.AvailableStock
				st.ReservedStock = rec.ReservedStock
			}
			items[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return InventoryResult{
		Type:      "inventory",
		Location:  location,
		Items:     items,
		Timestamp: a.now(),
	}, nil
}

// extractSKUs pulls unique SKUs out of the message, preserving order of
// first mention.
func extractSKUs(message string) []string {
	matches := skuPattern.FindAllString(strings.ToUpper(message), -1)
	if len(matches) == 0 {
		return defaultInventorySKUs
	}
	seen := make(map[string]bool, len(matches))
	skus := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			skus = append(skus, m)
		}
	}
	return skus
}

func (a *InventoryAgent) resolveStore(ctx context.Context, userID, message string) string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "store-001") {
		return "Store-001"
	}
	if user, err := a.store.GetUser(ctx, userID); err == nil && user != nil && user.PreferredStoreLocation != "" {
		return user.PreferredStoreLocation
	}
	return "Store-007"
}
