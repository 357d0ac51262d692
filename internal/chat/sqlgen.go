package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/llm"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/schema"
)

const sqlSystemPrompt = `You are a Postgres Expert. Create a valid SQL query.
%s

CRITICAL RULES:
1. For case-insensitive string matching, use LOWER() on both column and search value.
   Example: WHERE LOWER("Reason") LIKE '%%color%%' OR LOWER("Reason") LIKE '%%colour%%'
2. For keyword search in text columns, use LIKE with wildcards: '%%keyword%%'
3. Always alias calculated columns with AS. Example: COUNT(*) AS count, CAST(EXTRACT(YEAR FROM "ReviewTime") AS INTEGER) AS year
4. When searching for variations of a word (e.g., color/colour, analyze/analyse), check ALL common spellings.
5. For grouping with counts, always include the grouping columns in SELECT and GROUP BY.
6. For date/time queries, ALWAYS cast EXTRACT results to INTEGER to avoid decimals: CAST(EXTRACT(YEAR FROM column) AS INTEGER)
7. When grouping by multiple columns (year, month, attribute), include all in SELECT, GROUP BY, and ORDER BY using the CAST version.
8. ONLY output the SQL query. No explanations. If impossible, respond with 'ERROR'.
`

var (
	fencePattern      = regexp.MustCompile("(?i)```sql\n?")
	selectPattern     = regexp.MustCompile(`(?is)(select\s.*)`)
	quotedIdentifiers = regexp.MustCompile(`"([^"]+)"`)
	stringLiterals    = regexp.MustCompile(`'[^']*'`)
	bareTokens        = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	quotedAliases     = regexp.MustCompile(`(?i)\bas\s+"([^"]+)"`)
)

// Generator turns a question into a validated read-only statement for the
// resolved table.
type Generator struct {
	registry *schema.Registry
	client   llm.Client
}

func NewGenerator(registry *schema.Registry, client llm.Client) *Generator {
	return &Generator{registry: registry, client: client}
}

// Generate returns the statement to execute. A model connectivity failure
// is returned as-is; anything the model produced that does not validate
// wraps ErrGenerationFailed and must not reach the executor.
func (g *Generator) Generate(ctx context.Context, table schema.Table, prompt string) (string, error) {
	rules := table.Rules.PromptRules
	if rules == "" {
		rules = fmt.Sprintf("- Table: %s\n- Schema: %s", table.Name, table.ColumnList())
	}

	fullPrompt := fmt.Sprintf(sqlSystemPrompt, rules) + "\nQuestion: " + prompt
	raw, err := g.client.Complete(ctx, fullPrompt)
	observability.ObserveLLMCall("sql_generation", err)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	cleaned := CleanSQL(raw)
	if err := g.validate(table, cleaned); err != nil {
		observability.IncrementSQLGenerationFailure()
		return "", err
	}
	return cleaned, nil
}

// CleanSQL strips markdown fences and any leading chatter before the first
// SELECT keyword.
func CleanSQL(raw string) string {
	cleaned := fencePattern.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	if match := selectPattern.FindStringSubmatch(cleaned); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(cleaned)
}

func (g *Generator) validate(table schema.Table, sqlText string) error {
	if sqlText == "" {
		return fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	if strings.Contains(sqlText, "ERROR") {
		return fmt.Errorf("%w: model returned failure marker", ErrGenerationFailed)
	}
	lowered := strings.ToLower(sqlText)
	if !strings.HasPrefix(lowered, "select") && !strings.HasPrefix(lowered, "with") {
		return fmt.Errorf("%w: statement is not a read-only query", ErrGenerationFailed)
	}

	// Quoted output aliases name the result, not the schema; collect them
	// first so references like ORDER BY "Total" pass too.
	aliases := map[string]struct{}{}
	for _, match := range quotedAliases.FindAllStringSubmatch(sqlText, -1) {
		aliases[match[1]] = struct{}{}
	}

	for _, match := range quotedIdentifiers.FindAllStringSubmatch(sqlText, -1) {
		identifier := match[1]
		if identifier == table.Name || table.HasColumn(identifier) {
			continue
		}
		if _, ok := aliases[identifier]; ok {
			continue
		}
		return fmt.Errorf("%w: column %q is not part of %s", ErrGenerationFailed, identifier, table.Name)
	}

	if name, ok := g.foreignColumnReference(table, sqlText); ok {
		return fmt.Errorf("%w: column %q belongs to a different table than %s", ErrGenerationFailed, name, table.Name)
	}
	return nil
}

// foreignColumnReference checks bare identifiers against columns that only
// exist in other registered tables. Quoted identifiers and string
// literals are removed first so search keywords cannot trip the check.
func (g *Generator) foreignColumnReference(table schema.Table, sqlText string) (string, bool) {
	foreign := g.registry.ForeignColumns(table)

	stripped := quotedIdentifiers.ReplaceAllString(sqlText, " ")
	stripped = stringLiterals.ReplaceAllString(stripped, " ")
	for _, token := range bareTokens.FindAllString(stripped, -1) {
		if _, ok := foreign[token]; ok {
			return token, true
		}
	}
	return "", false
}
