// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielhkuo/surveyview/auth"
	"github.com/danielhkuo/surveyview/cliparse"
	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/middleware"
	"github.com/danielhkuo/surveyview/models"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/reconcile"
	"github.com/danielhkuo/surveyview/table"
	"github.com/danielhkuo/surveyview/viewquery"
)

// SurveyService is the reconciler surface the HTTP layer needs
type SurveyService interface {
	ViewName() string
	Checkpoint() (string, bool, error)
	GetAllSurveyData(ctx context.Context, updateView bool) (*table.Table, error)
	Refresh(ctx context.Context) (*table.Table, reconcile.Result, error)
}

type SurveyDataHandler struct {
	svc SurveyService
	cfg cliparse.Config

	// refreshes rebuild a shared view, one at a time per process
	refreshMu sync.Mutex
}

func NewSurveyDataHandler(svc SurveyService, cfg cliparse.Config) *SurveyDataHandler {
	return &SurveyDataHandler{svc: svc, cfg: cfg}
}

// GetSurveyData handles GET /survey-data
// Returns live survey data as CSV, or JSON with ?format=json. Never touches the view.
func (h *SurveyDataHandler) GetSurveyData(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = models.FormatCSV
	}
	if format != models.FormatCSV && format != models.FormatJSON {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	data, err := h.svc.GetAllSurveyData(r.Context(), false)
	if err != nil {
		writeDataError(w, "failed to fetch survey data", err)
		return
	}

	if format == models.FormatJSON {
		middleware.JSONResponse(w, http.StatusOK, tableResponse(data))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="all_survey_data.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := data.WriteCSV(w); err != nil {
		slog.Error("failed to write CSV response", "error", err)
	}
}

// RefreshView handles POST /survey-data/refresh
// Requires admin key. Reconciles the persisted view against live data.
func (h *SurveyDataHandler) RefreshView(w http.ResponseWriter, r *http.Request) {
	adminKey := r.Header.Get("X-Admin-Key")
	if adminKey == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Admin key required")
		return
	}

	if err := auth.ValidateAdminKey(h.svc.ViewName(), adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
		return
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	data, result, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeDataError(w, "failed to refresh view", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RefreshResponse{
		View:        h.svc.ViewName(),
		Outcome:     result.Outcome.String(),
		Rebuilt:     result.Rebuilt(),
		Previous:    result.Previous,
		Checkpoint:  result.Current,
		RowCount:    data.Len(),
		CompletedAt: time.Now().UTC(),
	})
}

// GetCheckpoint handles GET /checkpoint
func (h *SurveyDataHandler) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	fp, exists, err := h.svc.Checkpoint()
	if err != nil {
		slog.Error("failed to read checkpoint", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Checkpoint unavailable")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckpointResponse{
		View:        h.svc.ViewName(),
		Fingerprint: fp,
		Exists:      exists,
	})
}

func tableResponse(t *table.Table) models.TableResponse {
	rows := t.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return models.TableResponse{
		Columns:  t.Columns,
		Rows:     rows,
		RowCount: t.Len(),
	}
}

// writeDataError maps data-path errors onto status codes
func writeDataError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, query.ErrNonPermittedQuery):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, viewquery.ErrNoSurveys):
		middleware.ErrorResponse(w, http.StatusNotFound, "No surveys found")
	case db.IsConnectionError(err):
		slog.Error(msg, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
	default:
		slog.Error(msg, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
