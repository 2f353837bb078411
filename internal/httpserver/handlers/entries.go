package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/listview"
)

// ListEntries serves GET /api/entries. Optional q, icon and sort query
// parameters narrow and order the result; without them entries come back
// newest first.
func ListEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		entries, err := d.Entries.List(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, listview.Apply(entries, opts))
	}
}

func listOptions(r *http.Request) (listview.Options, error) {
	q := r.URL.Query()
	sort, err := listview.ParseSort(q.Get("sort"))
	if err != nil {
		return listview.Options{}, err
	}
	icon := domain.Icon(q.Get("icon"))
	if icon != "" && !icon.Valid() {
		return listview.Options{}, fmt.Errorf("%w: unknown icon %q", domain.ErrValidation, icon)
	}
	return listview.Options{Query: q.Get("q"), Icon: icon, Sort: sort}, nil
}

func GetEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := d.Entries.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func CreateEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CreateInput
		if err := decodeJSON(w, r, d.MaxBodyBytes, &in); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		e, err := d.Entries.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.Header().Set("Location", "/api/entries/"+e.ID)
		writeJSON(w, http.StatusCreated, e)
	}
}

// UpdateEntry serves PATCH /api/entries/{id}; absent fields are left as they are.
func UpdateEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.UpdateInput
		if err := decodeJSON(w, r, d.MaxBodyBytes, &in); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		e, err := d.Entries.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func DeleteEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Entries.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CopyEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := d.Entries.Copy(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.Header().Set("Location", "/api/entries/"+e.ID)
		writeJSON(w, http.StatusCreated, e)
	}
}
