package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/flock/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered and the
// request-id, access-log and auth middleware applied. When authToken is
// non-empty, requests (except GET /v1/health) must carry
// Authorization: Bearer <token>.
func (s *Server) NewHTTPHandler(authToken string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/collections", s.handleListCollections)
	mux.HandleFunc("GET /v1/collections/{collection}/items", s.handleListItems)
	mux.HandleFunc("POST /v1/collections/{collection}/items", s.handleCreateItem)
	mux.HandleFunc("GET /v1/items/{id}", s.handleGetItem)
	mux.HandleFunc("PATCH /v1/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /v1/items/{id}", s.handleDeleteItem)
	mux.HandleFunc("GET /v1/items/{id}/comments", s.handleGetComments)
	mux.HandleFunc("POST /v1/items/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /v1/items/{id}/events", s.handleGetEvents)
	mux.HandleFunc("PUT /v1/configs/{key...}", s.handleSetConfig)
	mux.HandleFunc("GET /v1/configs/{key...}", s.handleGetConfig)
	mux.HandleFunc("GET /v1/configs", s.handleListConfigs)
	mux.HandleFunc("DELETE /v1/configs/{key...}", s.handleDeleteConfig)
	mux.HandleFunc("GET /v1/roles", s.handleListRoles)
	mux.HandleFunc("GET /v1/dashboards/{role}", s.handleGetDashboard)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)

	return RequestIDMiddleware(AccessLogMiddleware(logger)(AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListCollections handles GET /v1/collections.
func (s *Server) handleListCollections(w http.ResponseWriter, _ *http.Request) {
	specs := make([]model.CollectionSpec, 0, len(model.Collections))
	for _, c := range model.Collections {
		spec, _ := model.SpecFor(c)
		specs = append(specs, spec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": specs})
}

// handleListRoles handles GET /v1/roles.
func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.listRoles(r.Context())
	if err != nil {
		writeStoreError(w, err, "role")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// handleGetDashboard handles GET /v1/dashboards/{role}.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.getDashboard(r.Context(), r.PathValue("role"))
	if err != nil {
		writeStoreError(w, err, "role")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleGetStats handles GET /v1/stats.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats(r.Context())
	if err != nil {
		writeStoreError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
