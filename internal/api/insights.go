package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type insightRequest struct {
	PageKey string `json:"page_key"`
}

type insightResponse struct {
	Insights *string `json:"insights"`
	Error    *string `json:"error"`
}

// handleDashboardInsights runs one of the fixed dashboard summaries.
// Failures ride in the payload, matching the chat contract.
func handleDashboardInsights(deps Dependencies, w http.ResponseWriter, r *http.Request, fetch func(context.Context) (string, error)) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	insights, err := fetch(r.Context())
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "dashboard insights failed", "page_key", req.PageKey, "error", err)
		}
		message := "The dashboard summary is temporarily unavailable. Please try again in a moment."
		writeJSON(w, http.StatusOK, insightResponse{Error: optional(message)})
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{Insights: optional(insights)})
}
