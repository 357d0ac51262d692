package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/reviewdesk/reviewdesk/internal/schema"
)

func newSelector(client *fakeLLM) *Selector {
	return NewSelector(schema.NewRegistry(), client, testLogger())
}

func TestSelectUtteranceKeywordBeatsModelAnswer(t *testing.T) {
	cases := []struct {
		utterance string
		want      string
	}{
		{"Show me product reviews", "processed_product_reviews3"},
		{"Analyze formatted data", "Formatted_Review_dataset"},
		{"Show complaints", "complaints"},
	}
	for _, tc := range cases {
		// The model suggests the wrong table every time; routing must not care.
		client := &fakeLLM{tableAnswer: "amazon_reviews"}
		selector := newSelector(client)

		table, source := selector.Select(context.Background(), tc.utterance)
		if table.Name != tc.want {
			t.Errorf("Select(%q) = %s, want %s", tc.utterance, table.Name, tc.want)
		}
		if source != SourceUtteranceKeyword {
			t.Errorf("Select(%q) source = %s, want %s", tc.utterance, source, SourceUtteranceKeyword)
		}
		if len(client.prompts) != 0 {
			t.Errorf("Select(%q) should not call the model on a keyword hit", tc.utterance)
		}
	}
}

func TestSelectKeywordInModelAnswer(t *testing.T) {
	client := &fakeLLM{tableAnswer: "the complaints table looks right"}
	table, source := newSelector(client).Select(context.Background(), "what are customers unhappy about")
	if table.Name != "complaints" {
		t.Fatalf("expected complaints, got %s", table.Name)
	}
	if source != SourceModelKeyword {
		t.Fatalf("expected model_keyword source, got %s", source)
	}
}

func TestSelectKeywordInModelAnswerBeatsExactName(t *testing.T) {
	// "amazon_reviews" carries the "review" keyword, so the rule wins over
	// the exact registry match.
	client := &fakeLLM{tableAnswer: ` "amazon_reviews" `}
	table, source := newSelector(client).Select(context.Background(), "star ratings by item")
	if table.Name != "processed_product_reviews3" {
		t.Fatalf("expected processed_product_reviews3, got %s", table.Name)
	}
	if source != SourceModelKeyword {
		t.Fatalf("expected model_keyword source, got %s", source)
	}
}

func TestSelectDirectModelAnswer(t *testing.T) {
	// A table name free of routing keywords resolves by registry lookup.
	registry := schema.NewRegistryFromTables(
		schema.Table{Name: "shipments", DisplayName: "Shipments", RoutingHint: "For shipment records"},
		schema.Table{Name: "warehouses", DisplayName: "Warehouses", RoutingHint: "For warehouse inventory"},
	)
	client := &fakeLLM{tableAnswer: ` "Warehouses" `}
	selector := NewSelector(registry, client, testLogger())

	table, source := selector.Select(context.Background(), "stock levels by location")
	if table.Name != "warehouses" {
		t.Fatalf("expected warehouses, got %s", table.Name)
	}
	if source != SourceModelAnswer {
		t.Fatalf("expected model_answer source, got %s", source)
	}
}

func TestSelectInvalidAnswerFallsBackToDefault(t *testing.T) {
	client := &fakeLLM{tableAnswer: "orders_table"}
	table, source := newSelector(client).Select(context.Background(), "how many rows are there")
	if table.Name != "processed_product_reviews3" {
		t.Fatalf("expected default table, got %s", table.Name)
	}
	if source != SourceDefault {
		t.Fatalf("expected default source, got %s", source)
	}
}

func TestSelectModelFailureFallsBackToDefault(t *testing.T) {
	client := &fakeLLM{tableErr: errors.New("unreachable")}
	table, source := newSelector(client).Select(context.Background(), "how many rows are there")
	if table.Name != "processed_product_reviews3" {
		t.Fatalf("expected default table, got %s", table.Name)
	}
	if source != SourceDefault {
		t.Fatalf("expected default source, got %s", source)
	}
}

func TestPinValidatesAgainstRegistry(t *testing.T) {
	selector := newSelector(&fakeLLM{})

	if table, ok := selector.Pin("complaints"); !ok || table.Name != "complaints" {
		t.Fatalf("expected complaints pin to resolve, got %v %v", table.Name, ok)
	}
	if _, ok := selector.Pin("not_a_table"); ok {
		t.Fatal("unregistered pin must not resolve")
	}
	if _, ok := selector.Pin("  "); ok {
		t.Fatal("blank pin must not resolve")
	}
}
