// Package schema holds the static registry of queryable review and
// complaint tables. The registry is built once at startup and is
// read-only afterwards; request handlers only ever look tables up.
package schema

import (
	"fmt"
	"strings"
)

type ColumnType string

const (
	TypeText        ColumnType = "text"
	TypeNumeric     ColumnType = "numeric"
	TypeDate        ColumnType = "date"
	TypeCategorical ColumnType = "categorical"
)

type Column struct {
	Name string
	Type ColumnType
}

// GenerationRules carries table-specific guidance injected into the SQL
// generation prompt.
type GenerationRules struct {
	// DateColumn, when set, is eligible for EXTRACT(YEAR/MONTH ...) grouping.
	DateColumn string
	// TextSearchColumns are the free-text columns keyword searches run against.
	TextSearchColumns []string
	// GroupingColumns are the preferred GROUP BY targets.
	GroupingColumns []string
	// PromptRules is the verbatim rule block for this table.
	PromptRules string
}

type Table struct {
	// Name is the SQL identifier. Mixed-case names require double quoting.
	Name        string
	DisplayName string
	// RoutingHint is the one-line purpose description shown to the model
	// during table selection. Descriptions must stay mutually exclusive.
	RoutingHint string
	Columns     []Column
	Rules       GenerationRules
}

func (t Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// QuotedName returns the identifier as it must appear in SQL.
func (t Table) QuotedName() string {
	if t.Name != strings.ToLower(t.Name) {
		return `"` + t.Name + `"`
	}
	return t.Name
}

// ColumnList renders the schema the way prompts and error messages show it.
func (t Table) ColumnList() string {
	parts := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		parts = append(parts, fmt.Sprintf("%q (%s)", col.Name, strings.ToUpper(string(col.Type))))
	}
	return strings.Join(parts, ", ")
}

type Registry struct {
	tables       map[string]Table
	order        []string
	defaultTable string
}

// NewRegistry builds the registry for the five known datasets.
func NewRegistry() *Registry {
	registry := &Registry{tables: map[string]Table{}}

	registry.add(Table{
		Name:        "processed_product_reviews3",
		DisplayName: "Processed Product Reviews",
		RoutingHint: "For product reviews and feedback",
		Columns: []Column{
			{Name: "reviewerID", Type: TypeText},
			{Name: "ReviewTime", Type: TypeDate},
			{Name: "Category", Type: TypeCategorical},
			{Name: "Attribute", Type: TypeCategorical},
			{Name: "Score", Type: TypeNumeric},
			{Name: "Reason", Type: TypeText},
			{Name: "Sortable Date", Type: TypeNumeric},
		},
		Rules: GenerationRules{
			DateColumn:        "ReviewTime",
			TextSearchColumns: []string{"Reason"},
			GroupingColumns:   []string{"Category", "Attribute"},
			PromptRules: `- Table: processed_product_reviews3
- Key columns: "Category" (product category), "Attribute" (product feature), "Score" (rating), "Reason" (review text), "reviewerID", "ReviewTime" (TIMESTAMP)
- For text search about features (e.g., color, design, quality): Use WHERE LOWER("Reason") LIKE '%keyword%'
- For category grouping: Use GROUP BY "Category"
- For counting: Use COUNT(*) AS count
- For date grouping (month/year): Cast EXTRACT results to integers to avoid decimals: CAST(EXTRACT(YEAR FROM "ReviewTime") AS INTEGER), CAST(EXTRACT(MONTH FROM "ReviewTime") AS INTEGER)
- Example for month/year: SELECT CAST(EXTRACT(YEAR FROM "ReviewTime") AS INTEGER) AS year, CAST(EXTRACT(MONTH FROM "ReviewTime") AS INTEGER) AS month, "Attribute", COUNT(*) AS count FROM "processed_product_reviews3" GROUP BY CAST(EXTRACT(YEAR FROM "ReviewTime") AS INTEGER), CAST(EXTRACT(MONTH FROM "ReviewTime") AS INTEGER), "Attribute" ORDER BY year, month, "Attribute"
- IMPORTANT: When searching for words with spelling variations (e.g., color vs colour), search for both: LOWER("Reason") LIKE '%color%' OR LOWER("Reason") LIKE '%colour%'`,
		},
	})

	registry.add(Table{
		Name:        "Formatted_Review_dataset",
		DisplayName: "Formatted Review Dataset",
		RoutingHint: "For detailed review analysis",
		Columns: []Column{
			{Name: "Review_id", Type: TypeNumeric},
			{Name: "Attribute", Type: TypeCategorical},
			{Name: "Score", Type: TypeNumeric},
			{Name: "Reason", Type: TypeText},
		},
		Rules: GenerationRules{
			TextSearchColumns: []string{"Reason"},
			GroupingColumns:   []string{"Attribute"},
			PromptRules: `- Table: Formatted_Review_dataset
- Key columns: "Review_id", "Attribute" (product feature), "Score" (rating), "Reason" (review text)
- For text search: Use WHERE LOWER("Reason") LIKE '%keyword%'
- For grouping by attributes: Use GROUP BY "Attribute"
- For counting by attribute: SELECT "Attribute", COUNT(*) AS count FROM "Formatted_Review_dataset" GROUP BY "Attribute"
- IMPORTANT: When searching for words with spelling variations, search for both spellings`,
		},
	})

	registry.add(Table{
		Name:        "complaints",
		DisplayName: "Complaints Data",
		RoutingHint: "For customer complaints data",
		Columns: []Column{
			{Name: "complaint_text", Type: TypeText},
			{Name: "predicted_category", Type: TypeCategorical},
			{Name: "predicted_intensity_label", Type: TypeCategorical},
			{Name: "predicted_intensity_score", Type: TypeNumeric},
			{Name: "prediction_timestamp", Type: TypeDate},
			{Name: "customer_id", Type: TypeText},
			{Name: "order_id", Type: TypeText},
			{Name: "email_id", Type: TypeText},
		},
		Rules: GenerationRules{
			DateColumn:        "prediction_timestamp",
			TextSearchColumns: []string{"complaint_text"},
			GroupingColumns:   []string{"predicted_category", "predicted_intensity_label"},
			PromptRules: `- Table: complaints
- Key columns: complaint_text (review text), predicted_category, predicted_intensity_label, predicted_intensity_score, prediction_timestamp (TIMESTAMP)
- For text search: Use WHERE LOWER(complaint_text) LIKE '%keyword%'
- For category analysis: Use GROUP BY predicted_category
- For date grouping: Cast EXTRACT results to integers: CAST(EXTRACT(YEAR FROM prediction_timestamp) AS INTEGER), CAST(EXTRACT(MONTH FROM prediction_timestamp) AS INTEGER)
- IMPORTANT: When searching for words with spelling variations, search for both spellings`,
		},
	})

	registry.add(Table{
		Name:        "amazon_reviews",
		DisplayName: "Amazon Reviews",
		RoutingHint: "For marketplace review text and star ratings",
		Columns: []Column{
			{Name: "reviewerID", Type: TypeText},
			{Name: "asin", Type: TypeText},
			{Name: "reviewText", Type: TypeText},
			{Name: "overall", Type: TypeNumeric},
			{Name: "summary", Type: TypeText},
			{Name: "reviewTime", Type: TypeDate},
		},
		Rules: GenerationRules{
			DateColumn:        "reviewTime",
			TextSearchColumns: []string{"reviewText", "summary"},
			GroupingColumns:   []string{"asin"},
		},
	})

	registry.add(Table{
		Name:        "raw_product_reviews",
		DisplayName: "Raw Reviews",
		RoutingHint: "For unprocessed review text with shopper demographics",
		Columns: []Column{
			{Name: "Review_id", Type: TypeNumeric},
			{Name: "Review_Text", Type: TypeText},
			{Name: "Division Name", Type: TypeCategorical},
			{Name: "Department_Name", Type: TypeCategorical},
			{Name: "Class Name", Type: TypeCategorical},
			{Name: "Rating", Type: TypeNumeric},
			{Name: "Age", Type: TypeNumeric},
		},
		Rules: GenerationRules{
			TextSearchColumns: []string{"Review_Text"},
			GroupingColumns:   []string{"Department_Name"},
		},
	})

	registry.defaultTable = "processed_product_reviews3"
	return registry
}

// NewRegistryFromTables builds a registry from an explicit table set. The
// first table becomes the default routing fallback.
func NewRegistryFromTables(tables ...Table) *Registry {
	registry := &Registry{tables: map[string]Table{}}
	for _, table := range tables {
		registry.add(table)
	}
	if len(tables) > 0 {
		registry.defaultTable = tables[0].Name
	}
	return registry
}

func (r *Registry) add(table Table) {
	r.tables[table.Name] = table
	r.order = append(r.order, table.Name)
}

// Lookup resolves an identifier in bare or double-quoted form.
func (r *Registry) Lookup(name string) (Table, bool) {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.Trim(trimmed, `"'`)
	if table, ok := r.tables[trimmed]; ok {
		return table, true
	}
	// Model answers are often case-folded; retry case-insensitively.
	for key, table := range r.tables {
		if strings.EqualFold(key, trimmed) {
			return table, true
		}
	}
	return Table{}, false
}

// Default returns the fallback table used when routing cannot resolve.
func (r *Registry) Default() Table {
	return r.tables[r.defaultTable]
}

// List returns every registered table in registration order.
func (r *Registry) List() []Table {
	tables := make([]Table, 0, len(r.order))
	for _, name := range r.order {
		tables = append(tables, r.tables[name])
	}
	return tables
}

// ForeignColumns returns column names that exist in at least one other
// registered table but not in the given one. The SQL validator uses the
// set to catch statements that drifted onto the wrong schema.
func (r *Registry) ForeignColumns(table Table) map[string]struct{} {
	foreign := map[string]struct{}{}
	for _, other := range r.tables {
		if other.Name == table.Name {
			continue
		}
		for _, col := range other.Columns {
			if !table.HasColumn(col.Name) {
				foreign[col.Name] = struct{}{}
			}
		}
	}
	return foreign
}
