package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alfredjeanlab/flock/internal/model"
)

// parseListQuery reads listing parameters from a query string. Malformed
// numbers are rejected rather than ignored.
func parseListQuery(v url.Values) (listQuery, error) {
	q := listQuery{
		Category: v.Get("category"),
		Date:     v.Get("date"),
		Q:        v.Get("q"),
		Sort:     v.Get("sort"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &q.Page},
		{"per_page", &q.PerPage},
	} {
		raw := v.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return listQuery{}, inputError(fmt.Sprintf("invalid %s %q", p.name, raw))
		}
		*p.dst = n
	}
	return q, nil
}

// handleListItems handles GET /v1/collections/{collection}/items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeStoreError(w, err, "collection")
		return
	}
	page, err := s.listItems(r.Context(), r.PathValue("collection"), q)
	if err != nil {
		writeStoreError(w, err, "collection")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateItem handles POST /v1/collections/{collection}/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in createItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := s.createItem(r.Context(), r.PathValue("collection"), in)
	if err != nil {
		writeStoreError(w, err, "collection")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleGetItem handles GET /v1/items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.getItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, "item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleUpdateItem handles PATCH /v1/items/{id}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in updateItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := s.updateItem(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeStoreError(w, err, "item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem handles DELETE /v1/items/{id}.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteItem(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err, "item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetComments handles GET /v1/items/{id}/comments.
func (s *Server) handleGetComments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.getItem(r.Context(), id); err != nil {
		writeStoreError(w, err, "item")
		return
	}
	comments, err := s.store.GetComments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get comments")
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// handleAddComment handles POST /v1/items/{id}/comments.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var in addCommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	comment, err := s.addComment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeStoreError(w, err, "item")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// handleGetEvents handles GET /v1/items/{id}/events.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	evts, err := s.store.GetEvents(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
