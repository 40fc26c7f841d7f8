package http

import (
	"log/slog"
	"net/http"

	"freteiro/internal/core"
	"freteiro/internal/shift"
)

type shiftStatusResponse struct {
	Active      bool            `json:"active"`
	ActiveEntry *core.TimeEntry `json:"activeEntry,omitempty"`
	ElapsedMs   int64           `json:"elapsedMs"`
	Elapsed     string          `json:"elapsed"`
}

type clearDayRequest struct {
	Date string `json:"date"`
}

func (s *Server) shiftStatus() shiftStatusResponse {
	elapsed := s.tracker.Elapsed()
	resp := shiftStatusResponse{
		ElapsedMs: elapsed.Milliseconds(),
		Elapsed:   shift.FormatElapsed(elapsed),
	}
	if entry, ok := s.tracker.ActiveEntry(); ok {
		resp.Active = true
		resp.ActiveEntry = &entry
	}
	return resp
}

func (s *Server) handleShiftStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.shiftStatus())
}

// handleShiftStart opens a shift. Starting while active is a no-op, so
// the handler always answers with the current status.
func (s *Server) handleShiftStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.tracker.StartShift(r.Context())
	writeJSON(w, http.StatusOK, s.shiftStatus())
}

func (s *Server) handleShiftEnd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.tracker.EndShift(r.Context())
	writeJSON(w, http.StatusOK, s.shiftStatus())
}

func (s *Server) handleShiftHistory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	days := s.tracker.DailyHistory()
	if days == nil {
		days = []shift.DaySummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleDeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete, http.MethodPost) {
		return
	}

	var req deleteRequest
	if err := readJSON(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Parse delete entry request", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing entry id")
		return
	}

	s.tracker.DeleteEntry(r.Context(), req.ID)
	writeJSON(w, http.StatusOK, s.shiftStatus())
}

func (s *Server) handleClearDay(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req clearDayRequest
	if err := readJSON(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Parse clear day request", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	s.tracker.ClearDay(r.Context(), date)
	writeJSON(w, http.StatusOK, s.shiftStatus())
}
