package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/listview"
)

// Icons serves the icon catalogue together with the icons entries currently use.
func Icons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Entries.List(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		used := listview.UsedIcons(entries)
		if used == nil {
			used = []domain.Icon{}
		}
		writeJSON(w, http.StatusOK, domain.IconSet{Icons: domain.Icons(), Used: used})
	}
}
