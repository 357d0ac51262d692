// Package render turns query results into the HTML and plain-text shapes
// the chat surface needs.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/store"
)

// HTMLTable renders the result set as a self-contained dark-themed table.
// An empty result renders to an empty string so the caller can omit the
// table block entirely.
func HTMLTable(result store.Result) string {
	if result.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("<div style='overflow-x:auto'><table style='width:100%; border-collapse:collapse; color:white; font-size:0.9rem;'>")
	b.WriteString("<thead><tr style='background:#374151; text-align: left;'>")
	for _, column := range result.Columns {
		b.WriteString("<th style='padding:12px; border-bottom: 2px solid #4B5563;'>")
		b.WriteString(html.EscapeString(PrettyHeader(column)))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for i, row := range result.Rows {
		bg := "#1F2937"
		if i%2 != 0 {
			bg = "#2D3748"
		}
		fmt.Fprintf(&b, "<tr style='background:%s; border-bottom:1px solid #4B5563'>", bg)
		for _, value := range row {
			b.WriteString("<td style='padding:10px;'>")
			b.WriteString(html.EscapeString(formatValue(value)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")
	return b.String()
}

// PrettyHeader turns a column name like "complaint_text" into "Complaint Text".
func PrettyHeader(column string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(column, "_", " "))
	if cleaned == "" {
		return column
	}
	words := strings.Fields(cleaned)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		// Trim trailing zeros so aggregates read like "4.2", not "4.200000".
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", typed), "0"), ".")
	default:
		return fmt.Sprintf("%v", typed)
	}
}
