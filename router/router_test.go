// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/surveyview/auth"
	"github.com/danielhkuo/surveyview/middleware"
	"github.com/danielhkuo/surveyview/models"
	"github.com/danielhkuo/surveyview/testutil"
)

func newTestMux(t *testing.T) (*http.ServeMux, string) {
	t.Helper()

	store := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, store)
	cfg := testutil.GetTestConfig(t)

	mux, err := NewRouter(store, cfg)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return mux, auth.GenerateAdminKey(cfg.ViewName, cfg.AdminKeySalt)
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "surveyview API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestNewRouter_InvalidViewName(t *testing.T) {
	store := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	cfg.ViewName = "bad name; DROP"

	if _, err := NewRouter(store, cfg); err == nil {
		t.Error("Expected error for invalid view name")
	}
}

func TestRouteExistence(t *testing.T) {
	mux, adminKey := newTestMux(t)

	testCases := []struct {
		method         string
		path           string
		body           any
		headers        map[string]string
		expectedStatus int
	}{
		{"GET", "/health", nil, nil, http.StatusOK},
		{"GET", "/", nil, nil, http.StatusOK},
		{"GET", "/survey-data", nil, nil, http.StatusOK},
		{"GET", "/survey-data?format=json", nil, nil, http.StatusOK},
		{"GET", "/checkpoint", nil, nil, http.StatusOK},
		{"POST", "/query", models.QueryRequest{SQL: "SELECT user_id FROM survey_user"}, nil, http.StatusOK},
		{"POST", "/survey-data/refresh", nil, nil, http.StatusUnauthorized},
		{"POST", "/survey-data/refresh", nil, map[string]string{"X-Admin-Key": adminKey}, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := testutil.MakeRequest(tc.method, tc.path, tc.body, tc.headers)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestLoggedRoutesCarryRequestID(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest("GET", "/checkpoint", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected request id header on logged route")
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _ := newTestMux(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET to query endpoint", "GET", "/query", http.StatusMethodNotAllowed},
		{"GET to refresh endpoint", "GET", "/survey-data/refresh", http.StatusMethodNotAllowed},
		{"DELETE survey data", "DELETE", "/survey-data", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/polls", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(""))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}
