package agent

import (
	"context"
	"reflect"
	"testing"

	"github.com/omnichat/orchestrator/tests/helpers"
)

func TestExtractSKUs(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"is FS123 in stock?", []string{"FS123"}},
		{"check fs123 and CS789 please", []string{"FS123", "CS789"}},
		{"FS123 FS123 twice", []string{"FS123"}},
		{"anything available?", []string{"FS123", "FS456"}},
	}
	for _, tc := range cases {
		if got := extractSKUs(tc.message); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("extractSKUs(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestInventoryHandle(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDemo(t, s)

	a := NewInventoryAgent(s)

	got, err := a.Handle(ctx, "user-priya-demo", "is FS123 in stock? also ZZ999")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(InventoryResult)
	if result.Location != "Store-007" {
		t.Fatalf("expected Store-007, got %s", result.Location)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].SKU != "FS123" || result.Items[0].Status != "in_stock" || result.Items[0].AvailableStock != 15 {
		t.Fatalf("unexpected FS123 status: %+v", result.Items[0])
	}
	if result.Items[1].SKU != "ZZ999" || result.Items[1].Status != "out_of_stock" {
		t.Fatalf("unexpected ZZ999 status: %+v", result.Items[1])
	}
}

func TestInventoryDefaultSKUs(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDemo(t, s)

	a := NewInventoryAgent(s)
	got, err := a.Handle(ctx, "user-priya-demo", "what do you have in stock?")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	result := got.(InventoryResult)
	if len(result.Items) != 2 || result.Items[0].SKU != "FS123" || result.Items[1].SKU != "FS456" {
		t.Fatalf("expected default SKUs, got %+v", result.Items)
	}
	for _, item := range result.Items {
		if item.Status != "in_stock" {
			t.Fatalf("expected in_stock for %s, got %s", item.SKU, item.Status)
		}
	}
}
