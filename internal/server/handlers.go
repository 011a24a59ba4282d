package server

import (
	"net/http"
	"strconv"
	"strings"

	"waitline/internal/api"
	"waitline/internal/queue"
)

func (s *Server) handleCenter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	view, err := s.svc.CenterView(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stations, err := s.svc.StationsList(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.StationSummary{"stations": stations})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	report, err := s.svc.DailyReport(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFinished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := s.svc.FinishedList(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.FinishedItem{"finished": items})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	customer, ok := s.pathID(w, r.URL.Path, "/api/history/")
	if !ok {
		return
	}
	history, err := s.svc.CustomerHistory(r.Context(), customer)
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleVerifyOperator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Code string `json:"code"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	operator, err := s.svc.VerifyOperator(r.Context(), strings.TrimSpace(body.Code))
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	if operator == nil {
		s.writeError(w, http.StatusUnauthorized, "unknown operator code")
		return
	}
	s.writeJSON(w, http.StatusOK, operator)
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		StationID      int64 `json:"stationId"`
		CustomerNumber int64 `json:"customerNumber"`
		AllowTransfer  bool  `json:"allowTransfer"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	entry, err := s.engine.Enqueue(r.Context(), queue.EnqueueRequest{
		StationID:      body.StationID,
		CustomerNumber: body.CustomerNumber,
		AllowTransfer:  body.AllowTransfer,
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FromEntry(entry))
}

func (s *Server) handleCallNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		StationID    int64  `json:"stationId"`
		OperatorCode string `json:"operatorCode"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	entry, err := s.engine.CallNext(r.Context(), queue.CallNextRequest{
		StationID:    body.StationID,
		OperatorCode: strings.TrimSpace(body.OperatorCode),
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromEntry(entry))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		StationID      int64 `json:"stationId"`
		CustomerNumber int64 `json:"customerNumber"`
		Position       int   `json:"position"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	entry, err := s.engine.InsertAtPosition(r.Context(), queue.InsertRequest{
		StationID:      body.StationID,
		CustomerNumber: body.CustomerNumber,
		Position:       body.Position,
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FromEntry(entry))
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		CustomerNumber int64 `json:"customerNumber"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if err := s.engine.FinishCustomer(r.Context(), body.CustomerNumber); err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": string(queue.StatusFinished)})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		CustomerNumber int64  `json:"customerNumber"`
		OperatorCode   string `json:"operatorCode"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	err := s.engine.ReleaseCustomer(r.Context(), queue.ReleaseRequest{
		CustomerNumber: body.CustomerNumber,
		OperatorCode:   strings.TrimSpace(body.OperatorCode),
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": string(queue.StatusReleased)})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		CustomerNumber int64  `json:"customerNumber"`
		StationName    string `json:"stationName"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	entry, err := s.engine.TransferToStation(r.Context(), queue.TransferRequest{
		CustomerNumber: body.CustomerNumber,
		StationName:    strings.TrimSpace(body.StationName),
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromEntry(entry))
}

func (s *Server) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		StationID    int64  `json:"stationId"`
		OperatorCode string `json:"operatorCode"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	active, err := s.engine.ToggleStationActive(r.Context(), queue.ToggleStationRequest{
		StationID:    body.StationID,
		OperatorCode: strings.TrimSpace(body.OperatorCode),
	})
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

func (s *Server) handleAdminEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := s.svc.Entries(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.EntryListResponse{Entries: entries})
}

func (s *Server) handleAdminEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r.URL.Path, "/admin/entries/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var body struct {
			CustomerNumber *int64  `json:"customerNumber"`
			Status         *string `json:"status"`
			StationID      *int64  `json:"stationId"`
		}
		if !s.decodeJSON(w, r, &body) {
			return
		}
		req := queue.EditEntryRequest{
			ID:             id,
			CustomerNumber: body.CustomerNumber,
			StationID:      body.StationID,
		}
		if body.Status != nil {
			status, valid := queue.ParseStatus(*body.Status)
			if !valid {
				s.writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(*body.Status))
				return
			}
			req.Status = &status
		}
		if err := s.engine.EditEntry(r.Context(), req); err != nil {
			s.writeQueueError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int64{"id": id})
	case http.MethodDelete:
		if err := s.engine.DeleteEntry(r.Context(), id); err != nil {
			s.writeQueueError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int64{"id": id})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAdminStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stations, err := s.svc.AllStations(r.Context())
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.StationItem{"stations": stations})
}

// handleAdminStation serves /admin/stations/{id}/hidden toggles.
func (s *Server) handleAdminStation(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/stations/")
	idStr, action, found := strings.Cut(rest, "/")
	if !found || action != "hidden" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid station id")
		return
	}
	hidden, err := s.engine.ToggleStationHidden(r.Context(), id)
	if err != nil {
		s.writeQueueError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"hidden": hidden})
}

// pathID extracts a positive integer path suffix after prefix.
func (s *Server) pathID(w http.ResponseWriter, path, prefix string) (int64, bool) {
	idStr := strings.TrimPrefix(path, prefix)
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
