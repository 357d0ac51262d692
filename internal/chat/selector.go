package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/llm"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/schema"
)

// SelectionSource records how routing resolved, for logging and tests.
type SelectionSource string

const (
	SourcePinned           SelectionSource = "pinned"
	SourceUtteranceKeyword SelectionSource = "utterance_keyword"
	SourceModelKeyword     SelectionSource = "model_keyword"
	SourceModelAnswer      SelectionSource = "model_answer"
	SourceDefault          SelectionSource = "default"
)

// routeRule maps keyword hits to a registered table. Rules are evaluated
// in order; the first hit wins. Keyword routing deliberately overrides the
// raw model answer so repeated questions route the same way every time.
type routeRule struct {
	keywords []string
	table    string
}

var routeRules = []routeRule{
	{keywords: []string{"product", "review"}, table: "processed_product_reviews3"},
	{keywords: []string{"format"}, table: "Formatted_Review_dataset"},
	{keywords: []string{"complaint"}, table: "complaints"},
}

func matchRouteRules(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range routeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.table, true
			}
		}
	}
	return "", false
}

// Selector resolves which table a question should run against.
type Selector struct {
	registry *schema.Registry
	client   llm.Client
	logger   *slog.Logger
}

func NewSelector(registry *schema.Registry, client llm.Client, logger *slog.Logger) *Selector {
	return &Selector{registry: registry, client: client, logger: logger}
}

// Select resolves a table for the question. Selection never fails: a model
// error degrades to keyword routing, and anything unresolvable lands on
// the configured default table.
func (s *Selector) Select(ctx context.Context, prompt string) (schema.Table, SelectionSource) {
	if name, ok := matchRouteRules(prompt); ok {
		table, _ := s.registry.Lookup(name)
		return table, SourceUtteranceKeyword
	}

	answer, err := s.client.Complete(ctx, s.routerPrompt(prompt))
	observability.ObserveLLMCall("table_selection", err)
	if err != nil {
		s.logger.WarnContext(ctx, "table selection model call failed, using default table", "error", err)
		observability.IncrementTableFallback()
		return s.registry.Default(), SourceDefault
	}

	normalized := normalizeTableAnswer(answer)
	if name, ok := matchRouteRules(normalized); ok {
		table, _ := s.registry.Lookup(name)
		return table, SourceModelKeyword
	}
	if table, ok := s.registry.Lookup(normalized); ok {
		return table, SourceModelAnswer
	}

	s.logger.InfoContext(ctx, "table selection unresolved, using default table", "answer", normalized)
	observability.IncrementTableFallback()
	return s.registry.Default(), SourceDefault
}

// Pin validates a caller-supplied table override. Invalid names fall back
// to normal selection by the caller.
func (s *Selector) Pin(name string) (schema.Table, bool) {
	if strings.TrimSpace(name) == "" {
		return schema.Table{}, false
	}
	return s.registry.Lookup(name)
}

func (s *Selector) routerPrompt(prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this question: %q\nAvailable tables:\n", prompt)
	for i, table := range s.registry.List() {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, table.Name, table.RoutingHint)
	}
	b.WriteString("\nWhich table should be used? Respond with ONLY the table name. If unsure, choose the most relevant table.")
	return b.String()
}

func normalizeTableAnswer(answer string) string {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	normalized = strings.NewReplacer(`"`, "", "'", "", "`", "", ".", "").Replace(normalized)
	return strings.TrimSpace(normalized)
}
