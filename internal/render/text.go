package render

import (
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/store"
)

// ResultsText produces a compact pipe-delimited view of the first maxRows
// rows, suitable for embedding in a model prompt.
func ResultsText(result store.Result, maxRows int) string {
	if result.Empty() {
		return ""
	}

	headers := make([]string, len(result.Columns))
	for i, column := range result.Columns {
		headers[i] = PrettyHeader(column)
	}

	rows := result.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatValue(value)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}
