package server

import (
	"encoding/json"
	"net/http"
)

// setConfigRequest is the JSON body for PUT /v1/configs/{key}.
type setConfigRequest struct {
	Value json.RawMessage `json:"value"`
}

// handleSetConfig handles PUT /v1/configs/{key}.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cfg, err := s.setConfig(r.Context(), r.PathValue("key"), req.Value)
	if err != nil {
		writeStoreError(w, err, "config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleGetConfig handles GET /v1/configs/{key}.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.getConfig(r.Context(), r.PathValue("key"))
	if err != nil {
		writeStoreError(w, err, "config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleListConfigs handles GET /v1/configs?namespace=...
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.listConfigs(r.Context(), r.URL.Query().Get("namespace"))
	if err != nil {
		writeStoreError(w, err, "config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"configs": configs})
}

// handleDeleteConfig handles DELETE /v1/configs/{key}.
func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteConfig(r.Context(), r.PathValue("key")); err != nil {
		writeStoreError(w, err, "config")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
