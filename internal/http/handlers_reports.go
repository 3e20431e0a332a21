package http

import (
	"net/http"
	"strconv"
	"time"
)

type monthlyReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type debtReportRequest struct {
	Name string `json:"name"`
}

// reportsEnabled guards the report routes; without a mailer or queue the
// feature is off.
func (s *Server) reportsEnabled(w http.ResponseWriter, r *http.Request) bool {
	if s.reports == nil {
		respondError(w, r, http.StatusServiceUnavailable, "reports are not configured")
		return false
	}
	return true
}

func (s *Server) handleMonthlyReportPreview(w http.ResponseWriter, r *http.Request, userID int64) {
	if !s.reportsEnabled(w, r) {
		return
	}

	month, year := monthYearParams(r)
	rendered, err := s.reports.MonthlyPreview(r.Context(), userID, month, year)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(rendered.HTML))
}

func (s *Server) handleSendMonthlyReport(w http.ResponseWriter, r *http.Request, userID int64) {
	if !s.reportsEnabled(w, r) {
		return
	}

	var req monthlyReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if req.Month == 0 {
		now := time.Now()
		req.Month, req.Year = int(now.Month()), now.Year()
	}

	if err := s.reports.SendMonthly(r.Context(), userID, req.Month, req.Year); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}

func (s *Server) handleDebtReportPreview(w http.ResponseWriter, r *http.Request, userID int64) {
	if !s.reportsEnabled(w, r) {
		return
	}

	rendered, err := s.reports.DebtPreview(r.Context(), userID, r.URL.Query().Get("name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(rendered.HTML))
}

func (s *Server) handleSendDebtReport(w http.ResponseWriter, r *http.Request, userID int64) {
	if !s.reportsEnabled(w, r) {
		return
	}

	var req debtReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.reports.SendDebts(r.Context(), userID, req.Name); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}

func monthYearParams(r *http.Request) (month, year int) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	return month, year
}
