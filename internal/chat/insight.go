package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/llm"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/render"
	"github.com/reviewdesk/reviewdesk/internal/schema"
	"github.com/reviewdesk/reviewdesk/internal/store"
)

// SuggestedQuestionsDelimiter separates the narrative from the follow-up
// questions in the plain-text model response. Text backends cannot return
// structured output, so the delimiter is the compatibility wire format;
// everything downstream works on the parsed Insight value.
const SuggestedQuestionsDelimiter = "**Suggested Questions:**"

const insightSampleRows = 10

// Insight is the structured result of insight generation.
type Insight struct {
	Narrative string
	Questions []string
}

// Text renders the insight back into the delimiter wire format consumed by
// the chat UI.
func (i Insight) Text() string {
	if len(i.Questions) == 0 {
		return i.Narrative
	}
	var b strings.Builder
	b.WriteString(i.Narrative)
	b.WriteString("\n\n")
	b.WriteString(SuggestedQuestionsDelimiter)
	for _, question := range i.Questions {
		b.WriteString("\n* ")
		b.WriteString(question)
	}
	return b.String()
}

// InsightGenerator summarizes query results and proposes follow-up
// questions scoped to the resolved table's columns.
type InsightGenerator struct {
	client llm.Client
}

func NewInsightGenerator(client llm.Client) *InsightGenerator {
	return &InsightGenerator{client: client}
}

// Generate builds the success-path insight. Error and empty-result paths
// never call the model; use ExecutionFailureInsight and EmptyResultInsight
// for those.
func (g *InsightGenerator) Generate(ctx context.Context, prompt string, table schema.Table, result store.Result) (Insight, error) {
	insightPrompt := fmt.Sprintf(`You are a helpful data analyst assistant.

The user asked: %q

The database returned: %s

Schema of %s: %s

Provide:
1. **Insight & Recommendation:** One concise insight with an actionable recommendation.
2. Two newlines.
3. %s Three simple follow-up questions as bullets.

CRITICAL: Questions must only use columns from the schema and be answerable with simple SQL.`,
		prompt,
		render.ResultsText(result, insightSampleRows),
		table.Name,
		table.ColumnList(),
		SuggestedQuestionsDelimiter,
	)

	raw, err := g.client.Complete(ctx, insightPrompt)
	observability.ObserveLLMCall("insight_generation", err)
	if err != nil {
		return Insight{}, fmt.Errorf("generate insight: %w", err)
	}
	return ParseInsight(CleanModelResponse(raw)), nil
}

// Summarize runs a free-form analyst prompt, used by the dashboard
// endpoints where the data and persona are fixed.
func (g *InsightGenerator) Summarize(ctx context.Context, prompt string) (string, error) {
	raw, err := g.client.Complete(ctx, prompt)
	observability.ObserveLLMCall("dashboard_insight", err)
	if err != nil {
		return "", fmt.Errorf("summarize dashboard: %w", err)
	}
	return CleanModelResponse(raw), nil
}

// EmptyResultInsight is the deterministic response for a query that ran
// but matched nothing.
func EmptyResultInsight(table schema.Table) Insight {
	narrative := fmt.Sprintf("The query ran successfully, but returned no results.\n\n"+
		"This could mean:\n"+
		"1. No data matches your search criteria\n"+
		"2. The keyword might be spelled differently in the database\n"+
		"3. Try searching for related terms\n\n"+
		"**Debug Info:** Table: %s", table.Name)
	return Insight{Narrative: narrative, Questions: fallbackQuestions(table)}
}

// ExecutionFailureInsight is the deterministic response when the database
// rejected the generated statement. The underlying cause stays in the
// server log.
func ExecutionFailureInsight(table schema.Table) Insight {
	narrative := "The generated query could not be executed against the database.\n\n" +
		"Try rephrasing your question, or name the exact columns you want to filter or group by."
	return Insight{Narrative: narrative, Questions: fallbackQuestions(table)}
}

// fallbackQuestions proposes generic follow-ups built from the table's
// own columns, so even deterministic paths suggest something answerable.
func fallbackQuestions(table schema.Table) []string {
	questions := make([]string, 0, 3)
	for _, column := range table.Rules.GroupingColumns {
		questions = append(questions, fmt.Sprintf("What are the most common values of %s?", render.PrettyHeader(column)))
		if len(questions) == 2 {
			break
		}
	}
	questions = append(questions, fmt.Sprintf("How many records are in %s in total?", table.DisplayName))
	return questions
}

// ParseInsight splits a plain-text model response on the questions
// delimiter, stripping bullet markers and blank lines.
func ParseInsight(text string) Insight {
	narrative, rest, found := strings.Cut(text, SuggestedQuestionsDelimiter)
	insight := Insight{Narrative: strings.TrimSpace(narrative)}
	if !found {
		return insight
	}
	for _, line := range strings.Split(rest, "\n") {
		question := strings.TrimSpace(line)
		question = strings.TrimPrefix(question, "*")
		question = strings.TrimPrefix(question, "-")
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		insight.Questions = append(insight.Questions, question)
	}
	return insight
}

// CleanModelResponse drops markdown fences and conversational preamble so
// the response starts at the first piece of substance.
func CleanModelResponse(text string) string {
	cleaned := strings.ReplaceAll(text, "```markdown", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "**") || strings.HasPrefix(trimmed, "1.") || strings.Contains(trimmed, "**") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return cleaned
}
