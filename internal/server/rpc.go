package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/copyleftdev/annealer/internal/errors"
	"github.com/copyleftdev/annealer/internal/optimization"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
	rpcNotFound       = -32001
	rpcConflict       = -32002
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// runIDParams is the parameter object of anneal.status and anneal.delete.
type runIDParams struct {
	RunID   string `json:"run_id"`
	History bool   `json:"history,omitempty"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests on /rpc.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, rpcParseError, "Parse error", nil)
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.respondWithError(w, rpcInvalidRequest, "Invalid Request", req.ID)
		return
	}

	var (
		result interface{}
		err    error
	)
	switch req.Method {
	case "anneal.start":
		var p StartRequest
		if err = decodeParams(req.Params, &p); err == nil {
			result, err = s.startRun(p)
		}
	case "anneal.status":
		var p runIDParams
		if err = decodeParams(req.Params, &p); err == nil {
			result, err = s.runStatus(p.RunID, p.History)
		}
	case "anneal.delete":
		var p runIDParams
		if err = decodeParams(req.Params, &p); err == nil {
			err = s.deleteRun(p.RunID)
			result = map[string]bool{"deleted": err == nil}
		}
	case "anneal.functions":
		result = map[string]interface{}{"functions": s.surfaceList()}
	default:
		s.respondWithError(w, rpcMethodNotFound, "Method not found", req.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, rpcCode(err), err.Error(), req.ID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	})
}

// decodeParams accepts params as an object or as a one-element array
// holding the object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apperrors.Wrap(apperrors.ErrBadRequest, "missing params")
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) != 1 {
			return apperrors.Wrap(apperrors.ErrBadRequest, "params must be an object or a one-element array")
		}
		raw = list[0]
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Wrap(apperrors.ErrBadRequest, "invalid params: "+err.Error())
	}
	return nil
}

func rpcCode(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return rpcNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return rpcConflict
	case apperrors.Is(err, apperrors.ErrBadRequest),
		apperrors.Is(err, optimization.ErrInvalidConfig),
		apperrors.Is(err, optimization.ErrUnknownFunction):
		return rpcInvalidParams
	default:
		return rpcServerError
	}
}

// respondWithError sends a JSON-RPC 2.0 error response.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Debug("rpc error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}
