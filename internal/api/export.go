package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type exportRequest struct {
	Prompt        string `json:"prompt"`
	SelectedTable string `json:"selected_table,omitempty"`
}

type exportResponse struct {
	ObjectKey string `json:"object_key"`
	RowCount  int    `json:"row_count"`
	Table     string `json:"table"`
}

// handleExport runs routing, generation, and execution for the prompt and
// uploads the result set as Parquet instead of rendering it.
func handleExport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "result export is not configured")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "prompt is required")
		return
	}

	table, _, result, err := deps.Chat.Run(r.Context(), req.Prompt, req.SelectedTable)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "export query failed", "table", table.Name, "error", err)
		}
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "the question could not be turned into an exportable query")
		return
	}
	if result.Empty() {
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "the query returned no rows to export")
		return
	}

	exported, err := deps.Exporter.Run(r.Context(), table, result)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "export upload failed", "table", table.Name, "error", err)
		}
		writeError(r.Context(), w, http.StatusBadGateway, "the export could not be written to object storage")
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		ObjectKey: exported.ObjectKey,
		RowCount:  exported.RowCount,
		Table:     table.Name,
	})
}
