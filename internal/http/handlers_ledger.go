package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"freteiro/internal/core"
	"freteiro/internal/ledger"
)

type createRecordRequest struct {
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Value       recordValue `json:"value"`
}

// recordValue accepts the value either as a JSON number or as a string
// the way the entry form submits it, with a dot or comma decimal
// separator ("12.34" or "12,34").
type recordValue float64

func (v *recordValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := core.ParseValue(s)
		if err != nil {
			return err
		}
		*v = recordValue(parsed)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = recordValue(f)
	return nil
}

type deleteRequest struct {
	ID string `json:"id"`
}

type recordListResponse struct {
	Records []core.Record       `json:"records"`
	Stats   recordStatsResponse `json:"stats"`
}

type recordStatsResponse struct {
	Count       int                  `json:"count"`
	TotalValue  float64              `json:"totalValue"`
	BestWeekday *ledger.WeekdayTotal `json:"bestWeekday,omitempty"`
}

func (s *Server) handleFreights(w http.ResponseWriter, r *http.Request) {
	s.handleCollection(w, r, s.freights, true)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	s.handleCollection(w, r, s.expenses, false)
}

func (s *Server) handleDeleteFreight(w http.ResponseWriter, r *http.Request) {
	s.handleCollectionDelete(w, r, s.freights)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleCollectionDelete(w, r, s.expenses)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, engine *ledger.Engine, withBestWeekday bool) {
	switch r.Method {
	case http.MethodGet:
		s.listCollection(w, r, engine, withBestWeekday)
	case http.MethodPost:
		s.createRecord(w, r, engine)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// listCollection answers a filtered query plus aggregate stats over the
// filtered subset.
func (s *Server) listCollection(w http.ResponseWriter, r *http.Request, engine *ledger.Engine, withBestWeekday bool) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	records := engine.Query(filter)
	summary := ledger.Summarize(records)

	resp := recordListResponse{
		Records: records,
		Stats: recordStatsResponse{
			Count:      summary.Count,
			TotalValue: summary.TotalValue,
		},
	}
	if withBestWeekday {
		resp.Stats.BestWeekday = ledger.BestWeekday(records)
	}
	if resp.Records == nil {
		resp.Records = []core.Record{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request, engine *ledger.Engine) {
	var req createRecordRequest
	if err := readJSON(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Parse create record request", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	// The engine accepts anything; input validation lives at this boundary.
	candidate := core.Record{Label: strings.TrimSpace(req.Label), Date: date, Value: float64(req.Value)}
	if err := candidate.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec := engine.Add(r.Context(), ledger.AddInput{
		Label:       candidate.Label,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Value:       candidate.Value,
	})

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleCollectionDelete(w http.ResponseWriter, r *http.Request, engine *ledger.Engine) {
	if !requireMethod(w, r, http.MethodDelete, http.MethodPost) {
		return
	}

	var req deleteRequest
	if err := readJSON(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Parse delete request", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing record id")
		return
	}

	// Deleting an unknown id is a no-op, so this is always a 200.
	engine.Delete(r.Context(), req.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": req.ID})
}

// parseFilter reads filter/start/end query parameters into a DateFilter.
// Unknown filter names fall back to "all"; custom bounds must parse when
// present.
func parseFilter(r *http.Request) (core.DateFilter, error) {
	q := r.URL.Query()

	filter := core.DateFilter{Type: core.DateFilterType(q.Get("filter"))}
	if filter.Type == "" {
		filter.Type = core.FilterAll
	}

	if filter.Type == core.FilterCustom {
		if v := strings.TrimSpace(q.Get("start")); v != "" {
			start, err := core.ParseDate(v)
			if err != nil {
				return core.DateFilter{}, err
			}
			filter.Start = start
		}
		if v := strings.TrimSpace(q.Get("end")); v != "" {
			end, err := core.ParseDate(v)
			if err != nil {
				return core.DateFilter{}, err
			}
			filter.End = end
		}
	}

	return filter, nil
}
