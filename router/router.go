// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"io"
	"net/http"

	"github.com/danielhkuo/surveyview/checkpoint"
	"github.com/danielhkuo/surveyview/cliparse"
	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/handlers"
	"github.com/danielhkuo/surveyview/middleware"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/reconcile"
)

func NewRouter(store *db.Store, cfg cliparse.Config) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	exec := query.NewExecutor(store)
	// Status lines are for terminals; the server relies on structured logs
	rec, err := reconcile.New(exec, checkpoint.New(cfg.CheckpointPath), cfg.ViewName, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciler: %w", err)
	}

	// Initialize handlers
	surveyHandler := handlers.NewSurveyDataHandler(rec, cfg)
	queryHandler := handlers.NewQueryHandler(exec)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Survey data (public, read-only)
	mux.HandleFunc("GET /survey-data", middleware.WithLogging(surveyHandler.GetSurveyData))
	mux.HandleFunc("GET /checkpoint", middleware.WithLogging(surveyHandler.GetCheckpoint))
	mux.HandleFunc("POST /query", middleware.WithLogging(queryHandler.RunQuery))

	// View maintenance (admin)
	mux.HandleFunc("POST /survey-data/refresh", middleware.WithLogging(surveyHandler.RefreshView))

	// Root endpoint, exact match so unknown paths 404
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("surveyview API v1"))
	})

	return mux, nil
}
