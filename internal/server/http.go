package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/copyleftdev/annealer/internal/errors"
)

// RegisterRoutes mounts the REST API and the JSON-RPC endpoint on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/anneal", s.handleAnneal)
		r.Get("/runs/{id}", s.handleStatus)
		r.Delete("/runs/{id}", s.handleDelete)
		r.Get("/functions", s.handleFunctions)
	})

	r.Post("/rpc", s.handleJSONRPC)
}

// handleAnneal handles POST /api/v1/anneal.
func (s *Server) handleAnneal(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrBadRequest, "invalid request body: "+err.Error()))
		return
	}

	resp, err := s.startRun(req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, resp)
}

// handleStatus handles GET /api/v1/runs/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	withHistory, _ := strconv.ParseBool(r.URL.Query().Get("history"))

	status, err := s.runStatus(chi.URLParam(r, "id"), withHistory)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// handleDelete handles DELETE /api/v1/runs/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteRun(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFunctions handles GET /api/v1/functions.
func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"functions": s.surfaceList(),
	})
}

// respondError writes {"error": ...} with the status mapped from err.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// respondJSON encodes body before writing the header, so a value JSON
// cannot represent (such as an infinite energy) yields a 500.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
