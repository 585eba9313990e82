// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/middleware"
	"github.com/danielhkuo/surveyview/models"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/table"
)

// QueryService runs permitted read-only statements
type QueryService interface {
	ExecuteSelect(ctx context.Context, sqlText string) (*table.Table, error)
}

type QueryHandler struct {
	exec QueryService
}

func NewQueryHandler(exec QueryService) *QueryHandler {
	return &QueryHandler{exec: exec}
}

// RunQuery handles POST /query
func (h *QueryHandler) RunQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.SQL) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sql is required")
		return
	}

	result, err := h.exec.ExecuteSelect(r.Context(), req.SQL)
	if err != nil {
		if errors.Is(err, query.ErrNonPermittedQuery) || db.IsConnectionError(err) {
			writeDataError(w, "failed to run query", err)
			return
		}
		// the statement itself is caller input
		slog.Warn("query failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Query failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tableResponse(result))
}
