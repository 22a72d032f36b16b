// internal/api/handler/report.go
package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/report"
	"fintrack/internal/service"
)

// ReportHandler serves monthly reports as JSON or as an xlsx download.
type ReportHandler struct {
	base
	service service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{base: base{logger: logger}, service: svc}
}

// yearMonth reads ?year=&month=, defaulting to the current UTC month.
func yearMonth(r *http.Request) (int, int, error) {
	now := time.Now().UTC()
	year, err := intQuery(r, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := intQuery(r, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// Monthly handles GET /reports/monthly.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.MonthlyReport(r.Context(), userID, year, month)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Monthly report retrieved", result)
}

// Export handles GET /reports/monthly/export.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.MonthlyReport(r.Context(), userID, year, month)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthlyXLSX(&buf, result); err != nil {
		h.respondWithError(w, fmt.Errorf("export monthly report: %w", err))
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(result)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
