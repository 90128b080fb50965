package agent

import (
	"context"
	"testing"

	"github.com/omnichat/orchestrator/tests/helpers"
)

func TestParseFilters(t *testing.T) {
	cases := []struct {
		message      string
		wantCategory string
		wantMaxPrice float64
	}{
		{"show me formal shirts", "formal", 0},
		{"something casual", "casual", 0},
		{"a nice shirt under 2000", "shirt", 2000},
		{"formal wear below rs 1500", "formal", 1500},
		{"surprise me", "", 0},
	}
	for _, tc := range cases {
		got := parseFilters(tc.message)
		if got.Category != tc.wantCategory || got.MaxPrice != tc.wantMaxPrice {
			t.Errorf("parseFilters(%q) = %+v, want {%s %v}", tc.message, got, tc.wantCategory, tc.wantMaxPrice)
		}
	}
}

func TestRecommendationHandle(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDemo(t, s)

	a := NewRecommendationAgent(s)

	got, err := a.Handle(ctx, "user-priya-demo", "show me formal shirts under 2000")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(RecommendationResult)
	if result.Count != 2 {
		t.Fatalf("expected 2 formal products, got %d", result.Count)
	}
	skus := result.SKUs()
	if len(skus) != 2 || skus[0] != "FS123" || skus[1] != "FS456" {
		t.Fatalf("unexpected SKUs %v", skus)
	}
	if result.Filters.Category != "formal" || result.Filters.MaxPrice != 2000 {
		t.Fatalf("unexpected filters %+v", result.Filters)
	}
}

func TestRecommendationNoFilters(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDemo(t, s)

	a := NewRecommendationAgent(s)
	got, err := a.Handle(ctx, "", "what do you suggest?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result := got.(RecommendationResult); result.Count != 3 {
		t.Fatalf("expected full demo catalog, got %d", result.Count)
	}
}
