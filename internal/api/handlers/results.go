package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/wonny/aegis-factor/internal/audit"
	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

const dateLayout = "2006-01-02"

// ResultHolder keeps the latest successful run for readers
type ResultHolder struct {
	mu     sync.RWMutex
	result *brain.RunResult
}

// Set replaces the current run
func (h *ResultHolder) Set(r *brain.RunResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result = r
}

// Latest returns the current run, or nil before the first one
func (h *ResultHolder) Latest() *brain.RunResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.result
}

// ResultsHandler serves one pipeline run, read-only
// ⭐ SSOT: 결과 조회 API 핸들러는 이 구조체에서만
type ResultsHandler struct {
	holder *ResultHolder
	logger *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(holder *ResultHolder, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		holder: holder,
		logger: log,
	}
}

// ReportResponse is the body of GET /api/report
type ReportResponse struct {
	RunID        string                   `json:"run_id"`
	ConfigHash   string                   `json:"config_hash"`
	StartedAt    time.Time                `json:"started_at"`
	Report       *audit.PerformanceReport `json:"report"`
	ExcludedDays int                      `json:"excluded_days"`
}

// SelectionResponse lists the members chosen at one rebalancing date
type SelectionResponse struct {
	Date    string             `json:"date"`
	Members []contracts.Member `json:"members"`
}

// Health returns service status and the run being served
// GET /health
func (h *ResultsHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "aegis-factor-api",
	}
	if res := h.holder.Latest(); res != nil {
		body["run_id"] = res.RunID.String()
	}
	respondJSON(w, http.StatusOK, body)
}

// GetReport returns the performance summary
// GET /api/report
func (h *ResultsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latest(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, ReportResponse{
		RunID:        res.RunID.String(),
		ConfigHash:   res.ConfigHash,
		StartedAt:    res.StartedAt,
		Report:       res.Report,
		ExcludedDays: res.Returns.ExcludedDays,
	})
}

// GetReturns returns the daily strategy returns; excluded days carry null
// GET /api/returns
func (h *ResultsHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latest(w)
	if !ok {
		return
	}

	rec := audit.NewRunRecord(res.RunID, res.StartedAt, "", res.ConfigHash, res.Report,
		res.Returns.Returns, res.Returns.Holdings, nil)
	respondJSON(w, http.StatusOK, rec.Returns)
}

// GetSelections returns the members of every rebalancing date
// GET /api/selections
func (h *ResultsHandler) GetSelections(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latest(w)
	if !ok {
		return
	}

	dates := res.Selection.Dates()
	out := make([]SelectionResponse, 0, len(dates))
	for _, d := range dates {
		out = append(out, SelectionResponse{
			Date:    d.Format(dateLayout),
			Members: res.Selection.Members(d),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetSelectionByDate returns the members of one rebalancing date
// GET /api/selections/{date}
func (h *ResultsHandler) GetSelectionByDate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latest(w)
	if !ok {
		return
	}

	raw := mux.Vars(r)["date"]
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if res.Selection.Mask.RowOf(date) < 0 {
		respondError(w, http.StatusNotFound, raw+" is not a rebalancing date")
		return
	}

	respondJSON(w, http.StatusOK, SelectionResponse{
		Date:    raw,
		Members: res.Selection.Members(date),
	})
}

func (h *ResultsHandler) latest(w http.ResponseWriter) (*brain.RunResult, bool) {
	res := h.holder.Latest()
	if res == nil || !res.Success {
		respondError(w, http.StatusServiceUnavailable, "no completed run yet")
		return nil, false
	}
	return res, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
