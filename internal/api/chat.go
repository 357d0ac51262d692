package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/chat"
)

type chatRequest struct {
	Prompt        string `json:"prompt"`
	SelectedTable string `json:"selected_table,omitempty"`
}

type chatResponse struct {
	ResultsHTML *string `json:"results_html"`
	Insights    *string `json:"insights"`
	Error       *string `json:"error"`
}

func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "prompt is required")
		return
	}

	result := deps.Chat.Chat(r.Context(), chat.Request{
		Prompt:        req.Prompt,
		SelectedTable: req.SelectedTable,
	})
	writeJSON(w, http.StatusOK, chatResponse{
		ResultsHTML: optional(result.ResultsHTML),
		Insights:    optional(result.Insights),
		Error:       optional(result.Error),
	})
}

// optional maps the empty string to JSON null the way the UI expects.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
