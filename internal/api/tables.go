package api

import "net/http"

type tableEntry struct {
	DisplayName string `json:"display_name"`
	ID          string `json:"id"`
}

func handleListTables(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	tables := deps.Chat.Registry().List()
	entries := make([]tableEntry, 0, len(tables))
	for _, table := range tables {
		entries = append(entries, tableEntry{DisplayName: table.DisplayName, ID: table.Name})
	}
	writeJSON(w, http.StatusOK, entries)
}
