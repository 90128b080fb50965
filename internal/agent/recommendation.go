package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// maxRecommendations caps how many products one reply surfaces.
const maxRecommendations = 5

var pricePattern = regexp.MustCompile(`(?:under|below|less than|upto|up to)\s*(?:rs\.?\s*)?(\d+)`)

// RecommendationResult is the structured outcome of a recommendation
// handler run.
type RecommendationResult struct {
	Type     string           `json:"type"`
	Products []domain.Product `json:"products"`
	Filters  AppliedFilters   `json:"filters"`
	Count    int              `json:"count"`
}

// AppliedFilters echoes back the constraints parsed from the message.
type AppliedFilters struct {
	Category string  `json:"category,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

// SKUs returns the recommended SKUs in display order.
func (r RecommendationResult) SKUs() []string {
	skus := make([]string, len(r.Products))
	for i, p := range r.Products {
		skus[i] = p.SKU
	}
	return skus
}

// RecommendationAgent answers product-discovery messages from the catalog.
// It is read-only; the caller records the surfaced SKUs in conversation
// context.
type RecommendationAgent struct {
	store store.Store
}

// NewRecommendationAgent creates a recommendation handler.
func NewRecommendationAgent(st store.Store) *RecommendationAgent {
	return &RecommendationAgent{store: st}
}

// Handle parses category and price hints from the message and lists
// matching products.
func (a *RecommendationAgent) Handle(ctx context.Context, userID string, message string) (any, error) {
	filters := parseFilters(message)

	products, err := a.store.ListProducts(ctx, store.ProductFilter{
		Category: filters.Category,
		MaxPrice: filters.MaxPrice,
		Limit:    maxRecommendations,
	})
	if err != nil {
		return nil, err
	}

	return RecommendationResult{
		Type:     "recommendation",
		Products: products,
		Filters:  filters,
		Count:    len(products),
	}, nil
}

func parseFilters(message string) AppliedFilters {
	lower := strings.ToLower(message)
	var f AppliedFilters

	switch {
	case strings.Contains(lower, "formal"):
		f.Category = "formal"
	case strings.Contains(lower, "casual"):
		f.Category = "casual"
	case strings.Contains(lower, "shirt"):
		f.Category = "shirt"
	}

	if m := pricePattern.FindStringSubmatch(lower); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.MaxPrice = price
		}
	}
	return f
}
