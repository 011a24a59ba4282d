package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"waitline/internal/logging"
	"waitline/internal/queue"
)

// errorResponse is the uniform error payload. Stations are populated for
// cross-queue conflicts so the client can offer a transfer.
type errorResponse struct {
	Error           string `json:"error"`
	Kind            string `json:"kind,omitempty"`
	ExistingStation string `json:"existingStation,omitempty"`
	NewStation      string `json:"newStation,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeQueueError maps the engine's error taxonomy onto HTTP statuses.
func (s *Server) writeQueueError(w http.ResponseWriter, err error) {
	kind := queue.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: string(kind)}

	var qerr *queue.Error
	if errors.As(err, &qerr) {
		resp.ExistingStation = qerr.ExistingStation
		resp.NewStation = qerr.NewStation
	}

	status := http.StatusInternalServerError
	switch kind {
	case queue.KindNotFound, queue.KindQueueEmpty, queue.KindNotInService, queue.KindNotFinished:
		status = http.StatusNotFound
	case queue.KindUnauthorized:
		status = http.StatusUnauthorized
	case queue.KindDuplicate, queue.KindInvalidPosition, queue.KindValidation:
		status = http.StatusBadRequest
	case queue.KindConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log().Error("internal error", logging.Error(err))
		resp.Error = "internal error"
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
