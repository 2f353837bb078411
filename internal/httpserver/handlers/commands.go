package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snote/internal/editor"
)

type commandResponse struct {
	Kind  int    `json:"kind"`
	Title string `json:"title"`
}

// EditorCommands lists the palette commands matching ?q=, in palette order.
func EditorCommands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds := editor.FilterCommands(r.URL.Query().Get("q"))
		out := make([]commandResponse, 0, len(kinds))
		for _, k := range kinds {
			out = append(out, commandResponse{Kind: int(k), Title: k.Title()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
